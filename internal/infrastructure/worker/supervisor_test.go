package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cws/attendance-system/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// newShellSupervisor runs each "worker" as /bin/sh -c <args[0]>, so tests can
// script process behaviour inline.
func newShellSupervisor(grace time.Duration) *Supervisor {
	return NewSupervisor("/bin/sh", "-c", grace, discardLogger)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSupervisor_StopUnknownSession(t *testing.T) {
	s := newShellSupervisor(time.Second)

	if s.Stop(context.Background(), "nobody") {
		t.Error("expected Stop to report false for an unknown session")
	}
}

func TestSupervisor_StartRegistersSession(t *testing.T) {
	s := newShellSupervisor(time.Second)
	ctx := context.Background()

	if err := s.Start(ctx, "alice", []string{"exec sleep 30"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.StopAll(ctx)

	if !s.Active("alice") {
		t.Error("expected alice registered after Start")
	}
	if s.Count() != 1 {
		t.Errorf("expected 1 session, got %d", s.Count())
	}
}

func TestSupervisor_SpawnFailure(t *testing.T) {
	s := NewSupervisor("/nonexistent/interpreter", "script.py", time.Second, discardLogger)

	err := s.Start(context.Background(), "alice", nil)
	if !errors.Is(err, domain.ErrWorkerSpawn) {
		t.Fatalf("expected ErrWorkerSpawn, got %v", err)
	}
	if s.Count() != 0 {
		t.Error("a failed spawn must not leave a registry entry")
	}
}

func TestSupervisor_GracefulStop(t *testing.T) {
	s := newShellSupervisor(5 * time.Second)
	ctx := context.Background()

	// sleep exits promptly on SIGTERM, so Stop should return well within
	// the grace period.
	if err := s.Start(ctx, "alice", []string{"exec sleep 30"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan bool, 1)
	go func() { done <- s.Stop(ctx, "alice") }()

	select {
	case ok := <-done:
		if !ok {
			t.Error("expected Stop to report true for a live session")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("graceful stop did not finish in time")
	}

	if s.Active("alice") {
		t.Error("session must be unregistered after Stop")
	}
}

func TestSupervisor_ForcedKillAfterGracePeriod(t *testing.T) {
	s := newShellSupervisor(200 * time.Millisecond)
	ctx := context.Background()

	// The worker ignores SIGTERM, forcing the kill path.
	if err := s.Start(ctx, "alice", []string{"trap '' TERM; while :; do :; done"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start := time.Now()
	if !s.Stop(ctx, "alice") {
		t.Error("expected Stop to report true")
	}
	elapsed := time.Since(start)

	if elapsed < 200*time.Millisecond {
		t.Errorf("Stop returned before the grace period elapsed: %v", elapsed)
	}
	if elapsed > 3*time.Second {
		t.Errorf("forced kill took too long: %v", elapsed)
	}
	if s.Active("alice") {
		t.Error("session must be unregistered after forced kill")
	}
}

func TestSupervisor_SentinelTriggersSelfStop(t *testing.T) {
	s := newShellSupervisor(time.Second)
	ctx := context.Background()

	script := "echo 'Recognition complete'; exec sleep 30"
	if err := s.Start(ctx, "alice", []string{script}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool { return !s.Active("alice") },
		"worker printing the sentinel was never torn down")
}

func TestSupervisor_SelfExitClearsRegistry(t *testing.T) {
	s := newShellSupervisor(time.Second)
	ctx := context.Background()

	// The worker exits on its own, without the sentinel and without Stop.
	if err := s.Start(ctx, "alice", []string{"true"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool { return !s.Active("alice") },
		"registry entry of an exited worker was never dropped")

	// A Stop after the self-exit must see no session.
	if s.Stop(ctx, "alice") {
		t.Error("expected Stop to report false after self-exit")
	}
}

func TestSupervisor_StartReplacesPriorSession(t *testing.T) {
	s := newShellSupervisor(time.Second)
	ctx := context.Background()

	if err := s.Start(ctx, "alice", []string{"exec sleep 30"}); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if err := s.Start(ctx, "alice", []string{"exec sleep 30"}); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	defer s.StopAll(ctx)

	if s.Count() != 1 {
		t.Errorf("expected exactly 1 session per username, got %d", s.Count())
	}
}

func TestSupervisor_StopAll(t *testing.T) {
	s := newShellSupervisor(time.Second)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		if err := s.Start(ctx, name, []string{"exec sleep 30"}); err != nil {
			t.Fatalf("start %s failed: %v", name, err)
		}
	}
	if s.Count() != 3 {
		t.Fatalf("expected 3 sessions, got %d", s.Count())
	}

	s.StopAll(ctx)

	if s.Count() != 0 {
		t.Errorf("expected empty registry after StopAll, got %d", s.Count())
	}
}
