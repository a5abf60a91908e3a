package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

// RecognitionHandler exposes the session orchestrator: start/stop sessions,
// the worker's mark callback, and run-state reporting.
type RecognitionHandler struct {
	service ports.RecognitionService
}

func NewRecognitionHandler(service ports.RecognitionService) *RecognitionHandler {
	return &RecognitionHandler{service: service}
}

// Start handles POST /v1/recognition/start.
//
// @Summary      Start a recognition session for a user
// @Tags         recognition
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startRecognitionRequest  true  "Session owner"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  statusResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/recognition/start [post]
func (h *RecognitionHandler) Start(c echo.Context) error {
	var req startRecognitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if !h.service.Start(c.Request().Context(), req.Username) {
		return c.JSON(http.StatusBadRequest, statusResponse{
			Success: false,
			Message: "failed to start face recognition",
		})
	}

	return c.JSON(http.StatusOK, statusResponse{
		Success: true,
		Message: "face recognition started",
	})
}

// Stop handles POST /v1/recognition/stop — stops every session.
//
// @Summary      Stop all recognition sessions
// @Tags         recognition
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statusResponse
// @Router       /v1/recognition/stop [post]
func (h *RecognitionHandler) Stop(c echo.Context) error {
	h.service.Stop(c.Request().Context())
	return c.JSON(http.StatusOK, statusResponse{
		Success: true,
		Message: "face recognition stopped",
	})
}

// Status handles GET /v1/recognition/status.
//
// @Summary      Report whether recognition is running
// @Tags         recognition
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  runStateResponse
// @Router       /v1/recognition/status [get]
func (h *RecognitionHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, runStateResponse{Running: h.service.IsRunning()})
}

// Mark handles POST /mark — the callback the spawned worker invokes once per
// recognized face. It is unauthenticated: the worker process holds no token.
//
// @Summary      Apply a worker-reported face match to attendance
// @Tags         recognition
// @Accept       json
// @Produce      json
// @Param        body  body      markRequest  true  "Recognized identity and optional timestamp"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  statusResponse
// @Failure      404   {object}  statusResponse
// @Failure      422   {object}  statusResponse
// @Router       /mark [post]
func (h *RecognitionHandler) Mark(c echo.Context) error {
	var req markRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.service.RecognizeEvent(c.Request().Context(), req.Username, req.Timestamp); err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrInvalidTimestamp):
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, statusResponse{
			Success: false,
			Message: "failed to mark attendance",
		})
	}

	return c.JSON(http.StatusOK, statusResponse{
		Success: true,
		Message: "attendance marked for " + req.Username,
	})
}
