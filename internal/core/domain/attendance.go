package domain

import (
	"errors"
	"time"
)

// AttendanceStatus is the derived presence status of a daily record.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusHalfDay AttendanceStatus = "half_day"
)

// FullDayPresence is the minimum elapsed time between in-time and out-time
// for a day to count as fully present.
const FullDayPresence = 240 * time.Minute

var ErrAttendanceNotFound = errors.New("attendance record not found")
var ErrInvalidTimestamp = errors.New("invalid timestamp")
var ErrWorkerSpawn = errors.New("recognition worker could not be started")

// Attendance is the single daily record for a (username, date) pair.
// Date is the calendar date in time.DateOnly form so the key is stable
// regardless of the timestamp's zone offset.
type Attendance struct {
	ID       string           `json:"id,omitempty"`
	Username string           `json:"username"`
	Date     string           `json:"date"`
	InTime   time.Time        `json:"in_time"`
	OutTime  *time.Time       `json:"out_time,omitempty"`
	Status   AttendanceStatus `json:"status"`
}

// NewAttendance creates the first record of the day for a user.
func NewAttendance(username string, ts time.Time) *Attendance {
	return &Attendance{
		Username: username,
		Date:     ts.Format(time.DateOnly),
		InTime:   ts,
		Status:   StatusPresent,
	}
}

// MarkOut records an out-time and recomputes the derived status. The
// out-time is overwritten unconditionally by every call, so it always
// reflects the latest event, not the chronologically greatest one.
func (a *Attendance) MarkOut(ts time.Time) {
	a.OutTime = &ts
	if ts.Sub(a.InTime) >= FullDayPresence {
		a.Status = StatusPresent
	} else {
		a.Status = StatusHalfDay
	}
}
