package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// rateLimitInterval is the minimum spacing between outbound requests.
	rateLimitInterval = 5 * time.Second

	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimitInfo is a diagnostic snapshot of the client-side throttle state.
// The header fields are present only when the server supplied them on the
// most recent response.
type RateLimitInfo struct {
	LastRequestTime      string `json:"last_request_time,omitempty"`
	NextAllowedTime      string `json:"next_allowed_time,omitempty"`
	BlockedRequestsCount int64  `json:"blocked_requests_count"`
	Limit                *int   `json:"rate_limit_limit,omitempty"`
	Remaining            *int   `json:"rate_limit_remaining,omitempty"`
	Reset                *int   `json:"rate_limit_reset,omitempty"`
}

// serverHeaders is the last captured set of server rate-limit headers,
// replaced wholesale on every capture.
type serverHeaders struct {
	limit     *int
	remaining *int
	reset     *int
}

// rateLimiter serializes outbound requests to the minimum interval. It keeps
// two clocks deliberately separate: nextAllowed carries Go's monotonic
// reading and is only ever compared against now(), while lastRequest is wall
// clock and only ever displayed. The two meet exclusively in snapshot(),
// where the monotonic delta is applied to the current wall-clock time.
type rateLimiter struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *zap.Logger

	mu          sync.Mutex
	nextAllowed time.Time // zero until the first request completes
	lastRequest time.Time // wall clock
	blocked     int64
	headers     serverHeaders
}

func newRateLimiter(logger *zap.Logger) *rateLimiter {
	return &rateLimiter{
		interval: rateLimitInterval,
		now:      time.Now,
		sleep:    sleepContext,
		logger:   logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// enforce suspends the caller until the minimum interval since the previous
// request has elapsed. A wait counts as exactly one blocked request even when
// it is cut short by ctx cancellation.
func (r *rateLimiter) enforce(ctx context.Context) error {
	r.mu.Lock()
	var wait time.Duration
	if !r.nextAllowed.IsZero() {
		if d := r.nextAllowed.Sub(r.now()); d > 0 {
			wait = d
			r.blocked++
		}
	}
	blocked := r.blocked
	r.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	r.logger.Debug("rate limit: waiting before next request",
		zap.Duration("wait", wait),
		zap.Int64("blocked_total", blocked),
	)
	return r.sleep(ctx, wait)
}

// recordRequestCompleted stamps the request bookkeeping. Called after every
// outbound attempt, success or failure.
func (r *rateLimiter) recordRequestCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.lastRequest = now.UTC()
	r.nextAllowed = now.Add(r.interval)
}

// captureHeaders replaces the stored header snapshot with whatever integer
// rate-limit headers the response carried. A header that is present but not
// an integer is dropped, not an error.
func (r *rateLimiter) captureHeaders(h http.Header) {
	var captured serverHeaders
	for _, field := range []struct {
		name string
		dst  **int
	}{
		{headerRateLimitLimit, &captured.limit},
		{headerRateLimitRemaining, &captured.remaining},
		{headerRateLimitReset, &captured.reset},
	} {
		value := h.Get(field.name)
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			r.logger.Debug("non-integer rate-limit header",
				zap.String("header", field.name),
				zap.String("value", value),
			)
			continue
		}
		*field.dst = &n
	}

	r.mu.Lock()
	r.headers = captured
	r.mu.Unlock()
}

// snapshot renders the throttle state for diagnostics. NextAllowedTime is
// absent when no future block is pending.
func (r *rateLimiter) snapshot() RateLimitInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := RateLimitInfo{
		BlockedRequestsCount: r.blocked,
		Limit:                r.headers.limit,
		Remaining:            r.headers.remaining,
		Reset:                r.headers.reset,
	}

	if !r.lastRequest.IsZero() {
		info.LastRequestTime = r.lastRequest.Format(time.RFC3339Nano)
	}

	if !r.nextAllowed.IsZero() {
		if delta := r.nextAllowed.Sub(r.now()); delta > 0 {
			info.NextAllowedTime = r.now().UTC().Add(delta).Format(time.RFC3339Nano)
		}
	}

	return info
}
