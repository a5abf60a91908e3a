package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type startRecognitionRequest struct {
	Username string `json:"username" validate:"required"`
}

// markRequest is the worker callback payload. Timestamp is an optional
// ISO-8601 date-time; empty means "now".
type markRequest struct {
	Username  string `json:"username"  validate:"required"`
	Timestamp string `json:"timestamp"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type runStateResponse struct {
	Running bool `json:"running"`
}
