package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

type eventService struct {
	eventRepo ports.EventRepository
	log       zerolog.Logger
}

// NewEventService returns the audit-trail EventService implementation.
func NewEventService(eventRepo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{eventRepo: eventRepo, log: log}
}

// Process persists one recognition event to the audit collection. Events
// reach this point only after the attendance upsert succeeded, so a failure
// here loses audit detail, never attendance state.
func (s *eventService) Process(ctx context.Context, in ports.RecognitionEventInput) error {
	event := &domain.RecognitionEvent{
		Username:  in.Username,
		Timestamp: in.Timestamp,
		Status:    in.Status,
		Source:    in.Source,
	}

	if err := s.eventRepo.InsertEvent(ctx, event); err != nil {
		return fmt.Errorf("audit event: %w", err)
	}

	s.log.Debug().
		Str("username", in.Username).
		Str("status", string(in.Status)).
		Msg("recognition event audited")
	return nil
}
