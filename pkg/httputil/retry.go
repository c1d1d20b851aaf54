package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryableError marks a transient failure: a transport error, a 5xx or a
// 429. After is the wait the server asked for, or zero.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. It returns nil for nil.
func Retryable(err error) error {
	return RetryAfter(err, 0)
}

// RetryAfter marks err as transient and records the server's requested
// wait. It returns nil for nil.
func RetryAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: max(after, 0)}
}

// IsRetryable reports whether err is, or wraps, a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// ParseRetryAfter reads a Retry-After header value, either delay seconds
// or an HTTP date. Unparseable and past values give zero.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// Policy says how often and how patiently a read is retried.
type Policy struct {
	// Attempts is the total number of calls, at least one.
	Attempts int
	// Delay is the first wait. It doubles after every failure.
	Delay time.Duration
	// MaxDelay caps any single wait, server hints included. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultPolicy is used for catalog reads and artwork downloads.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// Do calls fn until it succeeds, fails with an error not marked Retryable,
// or the attempts run out. The last error is returned; cancellation while
// waiting returns ctx.Err().
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(p.wait(i, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// wait is the pause after failed attempt n (zero-based).
func (p Policy) wait(n int, err error) time.Duration {
	d := p.Delay << n
	var re *RetryableError
	if errors.As(err, &re) && re.After > d {
		d = re.After
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Retry runs fn under a Policy of attempts calls starting at delay.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Policy{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// RetryWithBackoff runs fn under DefaultPolicy.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy.Do(ctx, fn)
}
