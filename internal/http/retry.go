package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"time"
)

// DefaultMaxAttempts is the total number of tries for a throttled request.
// Eight attempts put 127 seconds of backoff between the first and the last.
const DefaultMaxAttempts = 8

// DefaultBaseDelay is the backoff unit: attempt index i sleeps BaseDelay*2^i.
const DefaultBaseDelay = time.Second

// Config holds retry parameters for Do.
type Config struct {
	// MaxAttempts is the total number of attempts, at least 1 (default: 8)
	MaxAttempts int
	// RetryStatuses is the set of HTTP status codes treated as transient
	// (default: 429)
	RetryStatuses map[int]struct{}
	// BaseDelay is the backoff unit doubled per attempt (default: 1s)
	BaseDelay time.Duration
	// OnRetry is an optional callback invoked before each backoff sleep
	OnRetry func(attempt int, err error)
}

// DefaultConfig returns a Config with the default retry parameters.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   DefaultMaxAttempts,
		RetryStatuses: map[int]struct{}{nethttp.StatusTooManyRequests: {}},
		BaseDelay:     DefaultBaseDelay,
	}
}

// StatusError reports a response whose status code the caller did not accept.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s returned %s", e.URL, e.Status)
}

// ExhaustedError is returned when every attempt produced a retryable failure.
// It unwraps to the last observed failure so callers can inspect the root
// cause instead of losing it.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("tried %d times: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// IsExhausted reports whether err is a retry-exhaustion failure.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}

// Backoff returns the delay slept after attempt index i: BaseDelay doubled
// per attempt. Deterministic so callers can budget a worst-case run time.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		return 0
	}
	return base << uint(attempt)
}

// Do issues a request and transparently retries responses whose status is in
// cfg.RetryStatuses, sleeping Backoff(i) between attempts. Any other status
// is returned to the caller immediately, as is any transport error that does
// not carry a retryable status. After MaxAttempts retryable failures it
// returns an ExhaustedError wrapping the last one.
//
// header may be nil. The request carries no body, so it is rebuilt per
// attempt without buffering. Safe for concurrent use with a shared client.
func Do(ctx context.Context, client *nethttp.Client, cfg Config, method, url string, header nethttp.Header) (*nethttp.Response, error) {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry: MaxAttempts must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.RetryStatuses == nil {
		cfg.RetryStatuses = map[int]struct{}{nethttp.StatusTooManyRequests: {}}
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}

	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		req, err := nethttp.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for k, v := range header {
			req.Header[k] = v
		}

		resp, err := client.Do(req)
		if err != nil {
			// Transport errors propagate unless a wrapped StatusError
			// carries a retryable code (e.g. surfaced by a middleware
			// round tripper).
			var se *StatusError
			if errors.As(err, &se) {
				if _, retryable := cfg.RetryStatuses[se.StatusCode]; retryable {
					lastErr = err
					if berr := backoffSleep(ctx, cfg, attempt, err); berr != nil {
						return nil, berr
					}
					continue
				}
			}
			return nil, err
		}

		if _, retryable := cfg.RetryStatuses[resp.StatusCode]; !retryable {
			return resp, nil
		}

		// Retryable status: record it and release the connection.
		lastErr = &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        url,
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if attempt < cfg.MaxAttempts-1 {
			if berr := backoffSleep(ctx, cfg, attempt, lastErr); berr != nil {
				return nil, berr
			}
		}
	}

	return nil, &ExhaustedError{Attempts: cfg.MaxAttempts, Last: lastErr}
}

// backoffSleep sleeps the backoff for attempt, returning early if ctx ends.
func backoffSleep(ctx context.Context, cfg Config, attempt int, cause error) error {
	if cfg.OnRetry != nil {
		cfg.OnRetry(attempt+1, cause)
	}

	timer := time.NewTimer(Backoff(attempt, cfg.BaseDelay))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
