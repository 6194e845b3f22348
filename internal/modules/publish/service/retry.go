package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
)

// Sleeper suspends for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryPolicy retries an operation that was rate limited, waiting exactly
// the server supplied duration between attempts. Any other error ends the
// operation at once.
type RetryPolicy struct {
	MaxAttempts int
}

// DefaultRetryPolicy allows one retry after a rate limit.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 2}

// Do runs op until it succeeds, fails with a non rate limit error, or the
// attempts are used up. The last error is returned unchanged.
func (p RetryPolicy) Do(ctx context.Context, sleep Sleeper, op func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}

		var rl *apperrors.RateLimitError
		if !errors.As(err, &rl) || attempt == attempts {
			return err
		}

		slog.Warn("Rate limited, waiting before retry", "retry_after", rl.RetryAfter, "attempt", attempt)
		if sleepErr := sleep(ctx, rl.RetryAfter); sleepErr != nil {
			return errors.Join(err, sleepErr)
		}
	}
	return err
}
