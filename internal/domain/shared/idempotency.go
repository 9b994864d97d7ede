package shared

import (
	"context"
	"time"
)

// IdempotencyStore records which (handler, event) pairs already ran. It is
// backed by Redis when several server instances share the work.
type IdempotencyStore interface {
	// MarkProcessed records key for ttl. It reports false when key was already recorded.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}
