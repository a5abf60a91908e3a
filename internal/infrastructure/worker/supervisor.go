// Package worker supervises external recognition worker processes: one
// process per username, each with a monitor goroutine streaming its output.
package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cws/attendance-system/internal/core/domain"
)

// CompletionSentinel is the literal stdout line the worker emits when it has
// marked attendance and should be torn down.
const CompletionSentinel = "Recognition complete"

const defaultGracePeriod = 5 * time.Second

// session is one running worker process. exited is closed by the monitor
// goroutine once the process has been reaped; terminate waits on it.
type session struct {
	username string
	cmd      *exec.Cmd
	exited   chan struct{}
}

// Supervisor owns the registry of running worker processes keyed by
// username. All registry access goes through its methods; callers never hold
// process handles.
type Supervisor struct {
	mu       sync.Mutex
	sessions map[string]*session

	command string
	script  string
	grace   time.Duration
	log     zerolog.Logger
}

// NewSupervisor builds a Supervisor launching `command script args...`
// processes. A non-positive grace period falls back to the 5s default.
func NewSupervisor(command, script string, grace time.Duration, log zerolog.Logger) *Supervisor {
	if grace <= 0 {
		grace = defaultGracePeriod
	}
	return &Supervisor{
		sessions: make(map[string]*session),
		command:  command,
		script:   script,
		grace:    grace,
		log:      log,
	}
}

// Start launches a worker for username. Any prior session for the same
// username is fully torn down first, so at most one live process ever exists
// per identity. Stderr goes to the server's stderr; stdout is consumed by a
// dedicated monitor goroutine so the child can never block on a full pipe.
func (s *Supervisor) Start(ctx context.Context, username string, args []string) error {
	s.Stop(ctx, username)

	cmd := exec.Command(s.command, append([]string{s.script}, args...)...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrWorkerSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrWorkerSpawn, err)
	}

	sess := &session{
		username: username,
		cmd:      cmd,
		exited:   make(chan struct{}),
	}

	s.mu.Lock()
	prior := s.sessions[username]
	s.sessions[username] = sess
	s.mu.Unlock()

	if prior != nil {
		// Lost a race with a concurrent Start for the same username.
		go s.terminate(context.Background(), prior)
	}

	go s.monitor(sess, stdout)

	s.log.Info().
		Str("username", username).
		Int("pid", cmd.Process.Pid).
		Msg("recognition worker started")
	return nil
}

// monitor reads the worker's stdout line by line until end of stream. Each
// line is logged; the completion sentinel triggers a stop of the session.
// The stop runs in its own goroutine and the monitor keeps draining, so the
// pipe stays serviced while the process is being torn down.
func (s *Supervisor) monitor(sess *session, stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	completed := false

	for scanner.Scan() {
		line := scanner.Text()
		s.log.Debug().Str("username", sess.username).Str("line", line).Msg("worker output")
		if strings.Contains(line, CompletionSentinel) {
			completed = true
			break
		}
	}

	if completed {
		s.log.Info().Str("username", sess.username).Msg("worker reported completion")
		go s.Stop(context.Background(), sess.username)
		for scanner.Scan() {
			// drain remaining output until the stop closes the stream
		}
	}

	if err := scanner.Err(); err != nil {
		s.log.Warn().Err(err).Str("username", sess.username).Msg("worker output read failed")
	}

	waitErr := sess.cmd.Wait()
	close(sess.exited)

	if waitErr != nil {
		s.log.Debug().Err(waitErr).Str("username", sess.username).Msg("worker exited")
	}

	// Self-terminated without anyone calling Stop: drop the stale registry
	// entry so a later Stop correctly reports no session.
	s.unregister(sess)
}

// Stop tears down the session registered for username. It reports false when
// none is registered. Termination is graceful first (SIGTERM, bounded wait)
// and forced after the grace period; the session is unregistered regardless
// of which path ran. Stop never returns an error by contract.
func (s *Supervisor) Stop(ctx context.Context, username string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[username]
	if ok {
		delete(s.sessions, username)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	s.terminate(ctx, sess)
	return true
}

// StopAll sweeps every registered session. Individual termination failures
// are logged by terminate and never abort the sweep.
func (s *Supervisor) StopAll(ctx context.Context) {
	s.mu.Lock()
	usernames := make([]string, 0, len(s.sessions))
	for username := range s.sessions {
		usernames = append(usernames, username)
	}
	s.mu.Unlock()

	for _, username := range usernames {
		s.Stop(ctx, username)
	}

	s.log.Info().Int("stopped", len(usernames)).Msg("all recognition workers stopped")
}

// Count returns the number of registered sessions.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Active reports whether a session is registered for username.
func (s *Supervisor) Active(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[username]
	return ok
}

// terminate asks the process to exit, waits up to the grace period, then
// kills it. Cancellation of ctx while waiting counts as "assume not yet
// exited": it is logged and escalates straight to the forced kill.
func (s *Supervisor) terminate(ctx context.Context, sess *session) {
	select {
	case <-sess.exited:
		return
	default:
	}

	if err := sess.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.log.Debug().Err(err).Str("username", sess.username).Msg("SIGTERM failed, process may have exited")
	}

	timer := time.NewTimer(s.grace)
	defer timer.Stop()

	select {
	case <-sess.exited:
		s.log.Info().Str("username", sess.username).Msg("worker stopped gracefully")
		return
	case <-ctx.Done():
		s.log.Warn().Str("username", sess.username).Msg("grace wait interrupted, forcing kill")
	case <-timer.C:
		s.log.Warn().
			Str("username", sess.username).
			Dur("grace", s.grace).
			Msg("worker did not exit within grace period, forcing kill")
	}

	if err := sess.cmd.Process.Kill(); err != nil {
		s.log.Error().Err(err).Str("username", sess.username).Msg("failed to kill worker")
	}
	// The kill closes the worker's stdout, the monitor reaps it, and exited
	// closes shortly after.
	<-sess.exited
}

// unregister removes sess from the registry only if it is still the current
// entry for its username. A replacement session registered by a newer Start
// is left alone.
func (s *Supervisor) unregister(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sess.username] == sess {
		delete(s.sessions, sess.username)
	}
}
