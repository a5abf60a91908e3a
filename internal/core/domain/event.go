package domain

import "time"

// RecognitionEvent is an audit entry for a single worker callback that
// resulted in an attendance upsert.
type RecognitionEvent struct {
	Username  string
	Timestamp time.Time
	Status    AttendanceStatus
	Source    string
}
