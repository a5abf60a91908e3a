package ports

import (
	"context"

	"github.com/cws/attendance-system/internal/core/domain"
)

// AttendanceRepository handles daily attendance persistence. Records are
// keyed by (username, date); Upsert must never create a second record for
// the same key.
type AttendanceRepository interface {
	// FindByUserAndDate returns the record for the given username and
	// time.DateOnly date, or domain.ErrAttendanceNotFound.
	FindByUserAndDate(ctx context.Context, username, date string) (*domain.Attendance, error)
	// Upsert inserts or replaces the single record for (record.Username, record.Date).
	Upsert(ctx context.Context, record *domain.Attendance) error
	FindByUser(ctx context.Context, username string) ([]*domain.Attendance, error)
	FindByDate(ctx context.Context, date string) ([]*domain.Attendance, error)
	FindByUserAndDateRange(ctx context.Context, username, from, to string) ([]*domain.Attendance, error)
}
