package ports

import "context"

// RecognitionService is the public contract of the recognition session
// orchestrator: start a session for a user, accept worker callbacks, stop
// everything, and report run state.
type RecognitionService interface {
	// Start tears down any prior session for username, refreshes the staged
	// face corpus, and spawns a recognition worker. It reports false when the
	// worker could not be launched.
	Start(ctx context.Context, username string) bool
	// Stop terminates every session and purges the staged corpus. It always
	// reports true; individual termination failures are logged only.
	Stop(ctx context.Context) bool
	// RecognizeEvent applies a worker-reported match to attendance state.
	RecognizeEvent(ctx context.Context, username, timestamp string) error
	IsRunning() bool
	CheckToday(ctx context.Context, username string) (*AttendanceSummary, error)
}
