package ports

import (
	"context"

	"github.com/cws/attendance-system/internal/core/domain"
)

// EventRepository persists recognition events to the audit collection.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.RecognitionEvent) error
}
