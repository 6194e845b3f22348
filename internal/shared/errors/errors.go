package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingBotToken  = errors.New("telegram.token is required")
	ErrMissingChannelID = errors.New("telegram.channel_id is required")
	ErrInvalidSchedule  = errors.New("invalid scheduler expression")
	ErrNegativeValue    = errors.New("value must not be negative")

	ErrMalformedRecord  = errors.New("malformed post record")
	ErrLookupFailed     = errors.New("post lookup failed")
	ErrCacheReadFailed  = errors.New("cache read failed")
	ErrCacheWriteFailed = errors.New("cache write failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrTransport        = errors.New("transport error")
	ErrFeedFetchFailed  = errors.New("feed fetch failed")
	ErrTickInProgress   = errors.New("tick already in progress")
)

// RateLimitError is returned by a transport when the remote side asks the
// caller to back off for RetryAfter before sending again.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrMalformedRecord, ErrorKindMalformedRecord},
	{ErrLookupFailed, ErrorKindLookupFailed},
	{ErrCacheReadFailed, ErrorKindCacheReadFailed},
	{ErrCacheWriteFailed, ErrorKindCacheWriteFailed},
	{ErrRateLimited, ErrorKindRateLimited},
	{ErrTransport, ErrorKindTransportError},
	{ErrFeedFetchFailed, ErrorKindFeedFetchFailed},
}

// KindOf reports the ErrorKind of err, or an empty kind when err does not
// wrap any of the known sentinels.
func KindOf(err error) ErrorKind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ErrorKind("")
}
