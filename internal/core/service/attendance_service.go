package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cws/attendance-system/internal/api/metrics"
	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

// timestampLayouts accepts ISO-8601 date-times with or without a zone
// offset. The recognition worker sends zone-less local timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// AttendanceService owns the single authoritative daily-upsert rule: first
// match of the day opens the record, every later match the same day rewrites
// the out-time and rederives the status.
type AttendanceService struct {
	users      ports.UserRepository
	attendance ports.AttendanceRepository
	now        func() time.Time
	log        zerolog.Logger
}

func NewAttendanceService(users ports.UserRepository, attendance ports.AttendanceRepository, log zerolog.Logger) *AttendanceService {
	return &AttendanceService{
		users:      users,
		attendance: attendance,
		now:        time.Now,
		log:        log,
	}
}

// Record upserts the day's record for username. An empty timestamp resolves
// to now; a malformed non-empty one fails with domain.ErrInvalidTimestamp
// before any lookup or write happens.
func (s *AttendanceService) Record(ctx context.Context, username, timestamp string) (*domain.Attendance, error) {
	ts, err := s.resolveTimestamp(timestamp)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}

	date := ts.Format(time.DateOnly)
	record, err := s.attendance.FindByUserAndDate(ctx, username, date)
	switch {
	case errors.Is(err, domain.ErrAttendanceNotFound):
		record = domain.NewAttendance(username, ts)
	case err != nil:
		return nil, fmt.Errorf("record attendance: %w", err)
	default:
		record.MarkOut(ts)
	}

	if err := s.attendance.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("record attendance: %w", err)
	}
	metrics.AttendanceUpsertsTotal.WithLabelValues(string(record.Status)).Inc()

	s.log.Info().
		Str("username", username).
		Str("date", date).
		Str("status", string(record.Status)).
		Msg("attendance recorded")

	return record, nil
}

// SummaryFor reports today's record for username without mutating anything.
func (s *AttendanceService) SummaryFor(ctx context.Context, username string) (*ports.AttendanceSummary, error) {
	if _, err := s.users.FindByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}

	today := s.now().Format(time.DateOnly)
	record, err := s.attendance.FindByUserAndDate(ctx, username, today)
	if errors.Is(err, domain.ErrAttendanceNotFound) {
		return &ports.AttendanceSummary{Marked: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}

	inTime := record.InTime
	return &ports.AttendanceSummary{
		Marked:  true,
		InTime:  &inTime,
		OutTime: record.OutTime,
	}, nil
}

// HistoryFor lists a user's records, optionally restricted to [from, to].
func (s *AttendanceService) HistoryFor(ctx context.Context, username, from, to string) ([]*domain.Attendance, error) {
	if _, err := s.users.FindByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}
	if from != "" && to != "" {
		return s.attendance.FindByUserAndDateRange(ctx, username, from, to)
	}
	return s.attendance.FindByUser(ctx, username)
}

// ForDate lists every record of a single calendar date.
func (s *AttendanceService) ForDate(ctx context.Context, date string) ([]*domain.Attendance, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, domain.ErrInvalidTimestamp
	}
	return s.attendance.FindByDate(ctx, date)
}

// resolveTimestamp maps an empty input to now and parses anything else as
// ISO-8601. Malformed non-empty input is a caller error, never defaulted.
func (s *AttendanceService) resolveTimestamp(timestamp string) (time.Time, error) {
	if timestamp == "" {
		return s.now(), nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, timestamp); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimestamp, timestamp)
}
