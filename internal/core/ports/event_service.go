package ports

import (
	"context"
	"time"

	"github.com/cws/attendance-system/internal/core/domain"
)

// RecognitionEventInput is the DTO handed to the audit dispatcher after a
// callback has been applied to attendance state.
type RecognitionEventInput struct {
	Username  string
	Timestamp time.Time
	Status    domain.AttendanceStatus
	Source    string
}

// EventService records processed recognition events in the audit trail.
type EventService interface {
	Process(ctx context.Context, event RecognitionEventInput) error
}
