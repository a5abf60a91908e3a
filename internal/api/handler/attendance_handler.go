package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

// AttendanceHandler exposes read-only attendance views. Students only see
// their own records; staff and admins may query any username.
type AttendanceHandler struct {
	service ports.AttendanceService
}

func NewAttendanceHandler(service ports.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

type todayResponse struct {
	Marked  bool   `json:"marked"`
	InTime  string `json:"in_time,omitempty"`
	OutTime string `json:"out_time,omitempty"`
}

type attendanceItem struct {
	Date    string `json:"date"`
	InTime  string `json:"in_time"`
	OutTime string `json:"out_time,omitempty"`
	Status  string `json:"status"`
}

// resolveUsername picks the effective username for a query: students are
// always scoped to their own identity, other roles may pass ?username=.
func resolveUsername(c echo.Context) (string, error) {
	username, role, err := ctxClaims(c)
	if err != nil {
		return "", err
	}
	if role == domain.RoleStudent {
		return username, nil
	}
	if q := c.QueryParam("username"); q != "" {
		return q, nil
	}
	return username, nil
}

// Today handles GET /v1/attendance/today.
//
// @Summary      Report whether a user has been marked today
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        username  query     string  false  "Username (staff/admin only; students see themselves)"
// @Success      200       {object}  todayResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/attendance/today [get]
func (h *AttendanceHandler) Today(c echo.Context) error {
	username, err := resolveUsername(c)
	if err != nil {
		return err
	}

	summary, err := h.service.SummaryFor(c.Request().Context(), username)
	if err != nil {
		return err
	}

	resp := todayResponse{Marked: summary.Marked}
	if summary.InTime != nil {
		resp.InTime = summary.InTime.Format(time.RFC3339)
	}
	if summary.OutTime != nil {
		resp.OutTime = summary.OutTime.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

// History handles GET /v1/attendance/history.
//
// @Summary      List a user's attendance records
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        username  query     string  false  "Username (staff/admin only)"
// @Param        from      query     string  false  "Range start (YYYY-MM-DD)"
// @Param        to        query     string  false  "Range end (YYYY-MM-DD)"
// @Success      200       {array}   attendanceItem
// @Failure      404       {object}  errorResponse
// @Router       /v1/attendance/history [get]
func (h *AttendanceHandler) History(c echo.Context) error {
	username, err := resolveUsername(c)
	if err != nil {
		return err
	}

	records, err := h.service.HistoryFor(c.Request().Context(), username, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAttendanceItems(records))
}

// ByDate handles GET /v1/attendance/date/:date — every record of one day.
//
// @Summary      List attendance for a calendar date
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        date  path      string  true  "Calendar date (YYYY-MM-DD)"
// @Success      200   {array}   attendanceItem
// @Failure      422   {object}  errorResponse
// @Router       /v1/attendance/date/{date} [get]
func (h *AttendanceHandler) ByDate(c echo.Context) error {
	records, err := h.service.ForDate(c.Request().Context(), c.Param("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAttendanceItems(records))
}

func toAttendanceItems(records []*domain.Attendance) []attendanceItem {
	items := make([]attendanceItem, 0, len(records))
	for _, rec := range records {
		item := attendanceItem{
			Date:   rec.Date,
			InTime: rec.InTime.Format(time.RFC3339),
			Status: string(rec.Status),
		}
		if rec.OutTime != nil {
			item.OutTime = rec.OutTime.Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return items
}
