package ports

import (
	"context"
	"time"

	"github.com/cws/attendance-system/internal/core/domain"
)

// AttendanceSummary is the non-mutating "has this user been marked today"
// view returned by SummaryFor.
type AttendanceSummary struct {
	Marked  bool
	InTime  *time.Time
	OutTime *time.Time
}

// AttendanceService applies the single authoritative rule for turning a
// (username, timestamp) match event into a daily attendance upsert.
type AttendanceService interface {
	// Record upserts the day's record for username. An empty timestamp means
	// "now"; a malformed non-empty timestamp fails with
	// domain.ErrInvalidTimestamp without touching any record.
	Record(ctx context.Context, username, timestamp string) (*domain.Attendance, error)
	// SummaryFor reports today's record for username without mutating anything.
	SummaryFor(ctx context.Context, username string) (*AttendanceSummary, error)
	HistoryFor(ctx context.Context, username string, from, to string) ([]*domain.Attendance, error)
	ForDate(ctx context.Context, date string) ([]*domain.Attendance, error)
}
