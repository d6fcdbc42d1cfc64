package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is joined into errors from a backend that could not be
// reached (connection refused, timeouts, loading replicas).
var ErrUnavailable = errors.New("cache backend unavailable")

// transientError marks a failure worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable by [Backoff.Do]. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or anything it wraps, was marked with
// [Transient].
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Backoff retries an operation with exponentially growing pauses.
type Backoff struct {
	Attempts int           // total calls, including the first
	Delay    time.Duration // pause before the second call; doubled after each retry
}

// redisBackoff is used for every Redis round trip. A layout request should
// not stall for long on a cache that is going away.
var redisBackoff = Backoff{Attempts: 3, Delay: 100 * time.Millisecond}

// Do calls fn until it succeeds, returns an error not marked [Transient],
// or runs out of attempts. The last error is returned. Cancelling ctx stops
// the pauses early with ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
