package cache

import (
	"context"
	"errors"
	"time"
)

// Errors shared by the cache backends and the schedule fetcher.
var (
	// ErrNotFound marks a schedule URL that answered 404.
	ErrNotFound = errors.New("not found")

	// ErrNetwork marks connection failures and unexpected HTTP statuses.
	ErrNetwork = errors.New("network error")

	// ErrDisabled is returned by operations that need a real backend while
	// caching is off (--no-cache).
	ErrDisabled = errors.New("cache disabled")
)

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth another attempt: a dropped connection, 429 or
// a 5xx from the schedule host. Transient(nil) is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or anything it wraps, was marked with
// Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Backoff controls how a schedule download is retried.
type Backoff struct {
	Attempts int           // total calls, including the first
	Delay    time.Duration // wait before the second call
	MaxDelay time.Duration // cap for the doubled delay; zero means no cap
}

// DefaultBackoff is used when a provider sets no retry options.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 8 * time.Second}

// WithDefaults fills unset fields from DefaultBackoff.
func (b Backoff) WithDefaults() Backoff {
	if b.Attempts <= 0 {
		b.Attempts = DefaultBackoff.Attempts
	}
	if b.Delay <= 0 {
		b.Delay = DefaultBackoff.Delay
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = DefaultBackoff.MaxDelay
	}
	return b
}

// wait returns the pause after failed attempt n (0-based).
func (b Backoff) wait(n int) time.Duration {
	d := b.Delay
	for i := 0; i < n; i++ {
		if b.MaxDelay > 0 && d >= b.MaxDelay {
			return b.MaxDelay
		}
		d *= 2
	}
	if b.MaxDelay > 0 && d > b.MaxDelay {
		return b.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, returns a non-transient error or the
// attempts run out. The last error is returned; ctx.Err() if ctx ends while
// waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	var err error
	for n := 0; n < b.Attempts; n++ {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if n == b.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.wait(n)):
		}
	}
	return err
}
