package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker suppresses exact replays of worker callbacks, backed by
// Redis. The worker retries a /mark request it believes failed, so the same
// (username, timestamp) pair can arrive more than once. Distinct timestamps
// are never suppressed — they are legitimate out-time corrections.
// Key format: mark:<username>:<raw timestamp>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact callback has already been applied.
func (d *DedupChecker) IsDuplicate(ctx context.Context, username, timestamp string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(username, timestamp)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this callback has been applied (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, username, timestamp string) error {
	return d.client.Set(ctx, d.key(username, timestamp), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(username, timestamp string) string {
	return fmt.Sprintf("mark:%s:%s", username, timestamp)
}
