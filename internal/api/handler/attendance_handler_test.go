package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

type stubAttendanceService struct {
	summaryFn   func(ctx context.Context, username string) (*ports.AttendanceSummary, error)
	lastHistory string
	history     []*domain.Attendance
}

func (s *stubAttendanceService) Record(context.Context, string, string) (*domain.Attendance, error) {
	return nil, nil
}

func (s *stubAttendanceService) SummaryFor(ctx context.Context, username string) (*ports.AttendanceSummary, error) {
	return s.summaryFn(ctx, username)
}

func (s *stubAttendanceService) HistoryFor(_ context.Context, username, _, _ string) ([]*domain.Attendance, error) {
	s.lastHistory = username
	return s.history, nil
}

func (s *stubAttendanceService) ForDate(_ context.Context, date string) ([]*domain.Attendance, error) {
	if date == "bad-date" {
		return nil, domain.ErrInvalidTimestamp
	}
	return s.history, nil
}

func newAttendanceContext(t *testing.T, target, username, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", username)
	c.Set("role", role)
	return c, rec
}

func TestAttendanceHandler_Today_Unmarked(t *testing.T) {
	stub := &stubAttendanceService{
		summaryFn: func(_ context.Context, username string) (*ports.AttendanceSummary, error) {
			if username != "alice" {
				t.Fatalf("unexpected username: %s", username)
			}
			return &ports.AttendanceSummary{Marked: false}, nil
		},
	}
	h := NewAttendanceHandler(stub)

	c, rec := newAttendanceContext(t, "/v1/attendance/today", "alice", domain.RoleStudent)
	if err := h.Today(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp todayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Marked {
		t.Error("expected marked=false")
	}
	if resp.InTime != "" || resp.OutTime != "" {
		t.Error("unmarked response must omit times")
	}
}

func TestAttendanceHandler_Today_Marked(t *testing.T) {
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	stub := &stubAttendanceService{
		summaryFn: func(context.Context, string) (*ports.AttendanceSummary, error) {
			return &ports.AttendanceSummary{Marked: true, InTime: &in}, nil
		},
	}
	h := NewAttendanceHandler(stub)

	c, rec := newAttendanceContext(t, "/v1/attendance/today", "alice", domain.RoleStudent)
	if err := h.Today(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp todayResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Marked {
		t.Error("expected marked=true")
	}
	if resp.InTime != "2025-03-10T09:00:00Z" {
		t.Errorf("unexpected in_time: %q", resp.InTime)
	}
}

func TestAttendanceHandler_StudentScopedToOwnRecords(t *testing.T) {
	var queried string
	stub := &stubAttendanceService{
		summaryFn: func(_ context.Context, username string) (*ports.AttendanceSummary, error) {
			queried = username
			return &ports.AttendanceSummary{}, nil
		},
	}
	h := NewAttendanceHandler(stub)

	// A student asking for someone else still gets their own summary.
	c, _ := newAttendanceContext(t, "/v1/attendance/today?username=bob", "alice", domain.RoleStudent)
	if err := h.Today(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if queried != "alice" {
		t.Errorf("student query must be scoped to the caller, got %q", queried)
	}
}

func TestAttendanceHandler_StaffMayQueryOthers(t *testing.T) {
	stub := &stubAttendanceService{}
	h := NewAttendanceHandler(stub)

	c, _ := newAttendanceContext(t, "/v1/attendance/history?username=bob", "teacher1", domain.RoleStaff)
	if err := h.History(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if stub.lastHistory != "bob" {
		t.Errorf("expected staff to query bob, got %q", stub.lastHistory)
	}
}

func TestAttendanceHandler_MissingClaims(t *testing.T) {
	h := NewAttendanceHandler(&stubAttendanceService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/attendance/today", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Today(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %v", err)
	}
}

func TestAttendanceHandler_ByDate(t *testing.T) {
	out := time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)
	stub := &stubAttendanceService{history: []*domain.Attendance{
		{
			Username: "alice",
			Date:     "2025-03-10",
			InTime:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			OutTime:  &out,
			Status:   domain.StatusPresent,
		},
	}}
	h := NewAttendanceHandler(stub)

	c, rec := newAttendanceContext(t, "/v1/attendance/date/2025-03-10", "teacher1", domain.RoleStaff)
	c.SetParamNames("date")
	c.SetParamValues("2025-03-10")

	if err := h.ByDate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var items []attendanceItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Status != string(domain.StatusPresent) {
		t.Errorf("unexpected status: %s", items[0].Status)
	}
	if items[0].OutTime == "" {
		t.Error("expected out_time rendered")
	}
}
