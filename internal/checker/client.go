// Package checker queries the domain and username availability APIs.
package checker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/vnykmshr/goflow/pkg/ratelimit/bucket"

	"github.com/vnykmshr/namecheck/internal/domain"
)

// maxBodyBytes caps how much of an API response body is read.
const maxBodyBytes = 1 << 20

// NewHTTPClient returns the client used for API calls. Unless
// allowPrivateIPs is set, connections to private, loopback and link-local
// addresses are refused at dial time.
func NewHTTPClient(timeout time.Duration, allowPrivateIPs bool) *http.Client {
	if allowPrivateIPs {
		return &http.Client{Timeout: timeout}
	}

	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// NewLimiter creates the token bucket shared by both checkers. It returns
// nil when rate is zero, meaning requests are not paced.
func NewLimiter(rate float64) (domain.RateLimiter, error) {
	if rate <= 0 {
		return nil, nil
	}

	// Burst of 2x the per-second rate, at least one token
	burst := int(rate * 2)
	if burst < 1 {
		burst = 1
	}

	limiter, err := bucket.NewSafe(bucket.Limit(rate), burst)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter: %w", err)
	}
	return limiter, nil
}

// wait blocks on the limiter when one is configured.
func wait(ctx context.Context, limiter domain.RateLimiter) error {
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

// sleepContext sleeps for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// statusClass groups API responses by how the checkers react to them.
type statusClass int

const (
	// statusAnswer carries an availability answer.
	statusAnswer statusClass = iota
	// statusNotFound means the resource does not exist.
	statusNotFound
	// statusRateLimited must be retried after a cooldown.
	statusRateLimited
	// statusFailed is any other response; the name is reported unavailable.
	statusFailed
)

// classifyStatus maps an HTTP status code to a statusClass.
func classifyStatus(code int) statusClass {
	switch {
	case code == http.StatusOK:
		return statusAnswer
	case code == http.StatusNotFound:
		return statusNotFound
	case code == http.StatusTooManyRequests:
		return statusRateLimited
	default:
		return statusFailed
	}
}
