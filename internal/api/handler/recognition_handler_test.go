package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

type stubRecognitionService struct {
	startFn     func(ctx context.Context, username string) bool
	recognizeFn func(ctx context.Context, username, timestamp string) error
	running     bool
	stops       int
}

func (s *stubRecognitionService) Start(ctx context.Context, username string) bool {
	return s.startFn(ctx, username)
}

func (s *stubRecognitionService) Stop(context.Context) bool {
	s.stops++
	return true
}

func (s *stubRecognitionService) RecognizeEvent(ctx context.Context, username, timestamp string) error {
	return s.recognizeFn(ctx, username, timestamp)
}

func (s *stubRecognitionService) IsRunning() bool { return s.running }

func (s *stubRecognitionService) CheckToday(context.Context, string) (*ports.AttendanceSummary, error) {
	return &ports.AttendanceSummary{}, nil
}

func newRecognitionContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRecognitionHandler_Start_Success(t *testing.T) {
	stub := &stubRecognitionService{
		startFn: func(_ context.Context, username string) bool {
			if username != "teacher1" {
				t.Fatalf("unexpected username: %s", username)
			}
			return true
		},
	}
	h := NewRecognitionHandler(stub)

	c, rec := newRecognitionContext(t, http.MethodPost, "/v1/recognition/start", `{"username":"teacher1"}`)
	if err := h.Start(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
}

func TestRecognitionHandler_Start_Failure(t *testing.T) {
	stub := &stubRecognitionService{
		startFn: func(context.Context, string) bool { return false },
	}
	h := NewRecognitionHandler(stub)

	c, rec := newRecognitionContext(t, http.MethodPost, "/v1/recognition/start", `{"username":"teacher1"}`)
	if err := h.Start(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp statusResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Success {
		t.Error("expected success=false")
	}
}

func TestRecognitionHandler_Start_MissingUsername(t *testing.T) {
	stub := &stubRecognitionService{
		startFn: func(context.Context, string) bool {
			t.Fatal("service must not be called on invalid payload")
			return false
		},
	}
	h := NewRecognitionHandler(stub)

	c, _ := newRecognitionContext(t, http.MethodPost, "/v1/recognition/start", `{}`)
	err := h.Start(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 validation error, got %v", err)
	}
}

func TestRecognitionHandler_Stop(t *testing.T) {
	stub := &stubRecognitionService{}
	h := NewRecognitionHandler(stub)

	c, rec := newRecognitionContext(t, http.MethodPost, "/v1/recognition/stop", "")
	if err := h.Stop(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.stops != 1 {
		t.Errorf("expected 1 stop call, got %d", stub.stops)
	}
}

func TestRecognitionHandler_Status(t *testing.T) {
	stub := &stubRecognitionService{running: true}
	h := NewRecognitionHandler(stub)

	c, rec := newRecognitionContext(t, http.MethodGet, "/v1/recognition/status", "")
	if err := h.Status(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp runStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Running {
		t.Error("expected running=true")
	}
}

func TestRecognitionHandler_Mark_Success(t *testing.T) {
	stub := &stubRecognitionService{
		recognizeFn: func(_ context.Context, username, timestamp string) error {
			if username != "alice" || timestamp != "2025-03-10T09:00:00" {
				t.Fatalf("unexpected args: %s %s", username, timestamp)
			}
			return nil
		},
	}
	h := NewRecognitionHandler(stub)

	body := `{"username":"alice","timestamp":"2025-03-10T09:00:00"}`
	c, rec := newRecognitionContext(t, http.MethodPost, "/mark", body)
	if err := h.Mark(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp statusResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.Contains(resp.Message, "alice") {
		t.Errorf("expected the username echoed back, got %q", resp.Message)
	}
}

func TestRecognitionHandler_Mark_OmittedTimestamp(t *testing.T) {
	var gotTimestamp string
	stub := &stubRecognitionService{
		recognizeFn: func(_ context.Context, _, timestamp string) error {
			gotTimestamp = timestamp
			return nil
		},
	}
	h := NewRecognitionHandler(stub)

	c, rec := newRecognitionContext(t, http.MethodPost, "/mark", `{"username":"alice"}`)
	if err := h.Mark(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotTimestamp != "" {
		t.Errorf("expected empty timestamp forwarded, got %q", gotTimestamp)
	}
}

func TestRecognitionHandler_Mark_UnknownUser(t *testing.T) {
	stub := &stubRecognitionService{
		recognizeFn: func(context.Context, string, string) error {
			return domain.ErrUserNotFound
		},
	}
	h := NewRecognitionHandler(stub)

	c, rec := newRecognitionContext(t, http.MethodPost, "/mark", `{"username":"mallory"}`)
	if err := h.Mark(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRecognitionHandler_Mark_InvalidTimestamp(t *testing.T) {
	stub := &stubRecognitionService{
		recognizeFn: func(context.Context, string, string) error {
			return domain.ErrInvalidTimestamp
		},
	}
	h := NewRecognitionHandler(stub)

	body := `{"username":"alice","timestamp":"garbage"}`
	c, rec := newRecognitionContext(t, http.MethodPost, "/mark", body)
	if err := h.Mark(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
