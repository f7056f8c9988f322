package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBackend reports a backend name Open does not know.
	ErrBackend = errors.New("unknown cache backend")

	// ErrNetwork marks failures talking to Redis or MongoDB. The remote
	// backends wrap it in a RetryableError.
	ErrNetwork = errors.New("network error")

	// ErrCacheMiss is returned by GetJSON for absent or undecodable entries.
	ErrCacheMiss = errors.New("cache miss")
)

// RetryableError marks a backend failure worth another attempt, such as a
// dropped connection. Misses and decode errors are never retryable.
type RetryableError struct{ Err error }

// Retryable wraps err so RetryWithBackoff tries again. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const retryAttempts = 3

// retryBaseDelay is the pause after the first failed attempt. It doubles
// after each further failure.
var retryBaseDelay = 250 * time.Millisecond

// RetryWithBackoff calls fn until it succeeds, returns an error that is not
// retryable, or has failed retryAttempts times. It gives up early with
// ctx.Err() when ctx ends while waiting.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
