package repository

import (
	"context"
	"fmt"
	"time"
)

// Repository stores the last delivered updated_at per post id.
// Implementations must honor the expiry passed to Set.
type Repository interface {
	// Get returns the stored timestamp and whether a record exists.
	Get(ctx context.Context, postID int64) (int64, bool, error)
	Set(ctx context.Context, postID int64, updatedAt int64, ttl time.Duration) error
	Close() error
}

// Key is the cache key of a post's dedup record.
func Key(postID int64) string {
	return fmt.Sprintf("id:%d", postID)
}
