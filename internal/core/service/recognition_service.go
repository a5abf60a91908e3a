package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cws/attendance-system/internal/api/metrics"
	"github.com/cws/attendance-system/internal/core/ports"
)

// eventSource tags audit entries produced by worker callbacks.
const eventSource = "recognition_worker"

// CorpusStager abstracts the staged face corpus (filesystem staging area).
type CorpusStager interface {
	Refresh(ctx context.Context) (int, error)
	Purge() error
	Dir() string
}

// ProcessSupervisor abstracts the worker process registry.
type ProcessSupervisor interface {
	Start(ctx context.Context, username string, args []string) error
	Stop(ctx context.Context, username string) bool
	StopAll(ctx context.Context)
	Count() int
}

// DedupChecker abstracts the callback idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, username, timestamp string) (bool, error)
	Mark(ctx context.Context, username, timestamp string) error
}

// EventQueue abstracts the audit-trail dispatcher.
type EventQueue interface {
	Enqueue(event ports.RecognitionEventInput)
}

// RecognitionService composes the corpus stager, the worker supervisor, and
// the attendance recorder into the session orchestration facade.
type RecognitionService struct {
	corpus     CorpusStager
	supervisor ProcessSupervisor
	attendance ports.AttendanceService
	dedup      DedupChecker
	events     EventQueue

	callbackURL string
	// running is a liveness hint: set by any successful Start, cleared only
	// by Stop. A session stopping itself via the completion sentinel leaves
	// it set; callers rely on that.
	running atomic.Bool
	log     zerolog.Logger
}

func NewRecognitionService(
	corpus CorpusStager,
	supervisor ProcessSupervisor,
	attendance ports.AttendanceService,
	dedup DedupChecker,
	events EventQueue,
	callbackURL string,
	log zerolog.Logger,
) *RecognitionService {
	return &RecognitionService{
		corpus:      corpus,
		supervisor:  supervisor,
		attendance:  attendance,
		dedup:       dedup,
		events:      events,
		callbackURL: callbackURL,
		log:         log,
	}
}

// Start tears down any prior session for username, refreshes the staged
// corpus, and spawns a worker pointed at the staging directory and the
// callback endpoint. It reports false when the corpus cannot be staged or
// the worker cannot be launched.
func (s *RecognitionService) Start(ctx context.Context, username string) bool {
	s.supervisor.Stop(ctx, username)

	staged, err := s.corpus.Refresh(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("corpus refresh failed")
		return false
	}
	metrics.StagedFaces.Set(float64(staged))

	args := []string{
		"--known_faces_dir=" + s.corpus.Dir(),
		"--api_endpoint=" + s.callbackURL,
	}
	if err := s.supervisor.Start(ctx, username, args); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("worker spawn failed")
		metrics.SessionErrorsTotal.WithLabelValues("spawn").Inc()
		return false
	}

	s.running.Store(true)
	metrics.SessionsStartedTotal.Inc()
	metrics.SessionsActive.Set(float64(s.supervisor.Count()))

	s.log.Info().Str("username", username).Int("staged_faces", staged).Msg("recognition session started")
	return true
}

// Stop terminates every session, clears the run flag, and purges the staged
// corpus. It always reports true; cleanup failures are logged only.
func (s *RecognitionService) Stop(ctx context.Context) bool {
	s.supervisor.StopAll(ctx)

	if err := s.corpus.Purge(); err != nil {
		s.log.Warn().Err(err).Msg("corpus purge failed")
	}

	s.running.Store(false)
	metrics.SessionsActive.Set(0)

	s.log.Info().Msg("recognition stopped")
	return true
}

// RecognizeEvent applies one worker-reported match to attendance state.
// Exact (username, timestamp) replays are suppressed; attendance storage is
// independent of session liveness, so a racing Stop never corrupts it.
func (s *RecognitionService) RecognizeEvent(ctx context.Context, username, timestamp string) error {
	start := time.Now()

	// Timestamp-less events resolve to "now" downstream and are never
	// identical replays, so only explicit timestamps go through dedup.
	if timestamp != "" {
		dup, err := s.dedup.IsDuplicate(ctx, username, timestamp)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("dedup check failed, processing anyway")
		} else if dup {
			s.log.Debug().Str("username", username).Str("timestamp", timestamp).Msg("duplicate callback skipped")
			metrics.CallbackDedupTotal.WithLabelValues("hit").Inc()
			return nil
		}
		metrics.CallbackDedupTotal.WithLabelValues("miss").Inc()
	}

	record, err := s.attendance.Record(ctx, username, timestamp)
	if err != nil {
		metrics.CallbacksProcessedTotal.WithLabelValues("error").Inc()
		return err
	}

	if timestamp != "" {
		if err := s.dedup.Mark(ctx, username, timestamp); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to set dedup key")
		}
	}

	eventTime := record.InTime
	if record.OutTime != nil {
		eventTime = *record.OutTime
	}
	s.events.Enqueue(ports.RecognitionEventInput{
		Username:  username,
		Timestamp: eventTime,
		Status:    record.Status,
		Source:    eventSource,
	})

	metrics.CallbacksProcessedTotal.WithLabelValues(string(record.Status)).Inc()
	metrics.CallbackDuration.Observe(time.Since(start).Seconds())
	return nil
}

// IsRunning returns the process-wide run flag.
func (s *RecognitionService) IsRunning() bool {
	return s.running.Load()
}

// CheckToday reports whether username has been marked today.
func (s *RecognitionService) CheckToday(ctx context.Context, username string) (*ports.AttendanceSummary, error) {
	return s.attendance.SummaryFor(ctx, username)
}
