package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vnykmshr/namecheck/internal/domain"
	"github.com/vnykmshr/namecheck/internal/util"
)

// rateLimitMarker flags a throttled response even when the status is not 429.
var rateLimitMarker = []byte("TOO_MANY_REQUESTS")

// DomainConfig configures a DomainChecker.
type DomainConfig struct {
	URL        string
	Key        string
	Secret     string
	UserAgent  string
	Endings    []string
	MaxRetries int
	Cooldown   time.Duration
	// TestMode skips the cooldown sleep between rate-limited attempts.
	TestMode bool
}

// DomainChecker checks domain availability for every configured ending.
type DomainChecker struct {
	config  DomainConfig
	client  *http.Client
	limiter domain.RateLimiter
	metrics domain.MetricsRecorder
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewDomainChecker creates a domain checker. limiter and metrics may be nil.
func NewDomainChecker(config DomainConfig, client *http.Client, limiter domain.RateLimiter,
	metrics domain.MetricsRecorder, logger *slog.Logger) *DomainChecker {
	if len(config.Endings) == 0 {
		config.Endings = []string{"com"}
	}
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &DomainChecker{
		config:  config,
		client:  client,
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
		sleep:   sleepContext,
	}
}

// Source implements domain.Checker.
func (c *DomainChecker) Source() domain.Source {
	return domain.SourceDomain
}

// Check returns one verdict per name and ending, ordered by name then ending.
// It stops early when ctx is canceled.
func (c *DomainChecker) Check(ctx context.Context, names []string) []domain.Verdict {
	verdicts := make([]domain.Verdict, 0, len(names)*len(c.config.Endings))
	for _, name := range names {
		for i, ending := range c.config.Endings {
			if ctx.Err() != nil {
				return verdicts
			}
			identifier := name + "." + ending
			available := c.checkDomain(ctx, identifier)
			// A check cut short by cancellation has no answer.
			if ctx.Err() != nil {
				return verdicts
			}
			c.metrics.RecordVerdict(domain.SourceDomain, available)
			verdicts = append(verdicts, domain.Verdict{
				Name:       name,
				Source:     domain.SourceDomain,
				Identifier: identifier,
				Field:      domain.DomainField(i, ending),
				Available:  available,
			})
		}
	}
	return verdicts
}

// attemptResult is the outcome of one request to the domain API.
type attemptResult int

const (
	attemptDone attemptResult = iota
	attemptRateLimited
)

// checkDomain queries the API for identifier, retrying rate-limited
// responses until the retry budget is spent. Any failure yields false.
func (c *DomainChecker) checkDomain(ctx context.Context, identifier string) bool {
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		available, result := c.attempt(ctx, identifier)
		if result == attemptDone {
			return available
		}

		c.metrics.RecordRateLimited(domain.SourceDomain)
		c.logger.Warn("Domain API rate limited",
			"domain", identifier,
			"attempt", attempt,
			"max_retries", c.config.MaxRetries)

		if attempt == c.config.MaxRetries || c.config.TestMode {
			continue
		}
		if err := c.sleep(ctx, c.config.Cooldown); err != nil {
			c.logger.Warn("Cooldown interrupted", "domain", identifier, "error", err)
			return false
		}
	}

	c.metrics.RecordRetriesExhausted(domain.SourceDomain)
	c.logger.Error("Domain check failed: retries exhausted",
		"domain", identifier,
		"max_retries", c.config.MaxRetries)
	return false
}

// attempt performs a single request. It reports attemptRateLimited when the
// request should be retried; every other outcome is final.
func (c *DomainChecker) attempt(ctx context.Context, identifier string) (bool, attemptResult) {
	if err := wait(ctx, c.limiter); err != nil {
		c.logger.Warn("Rate limiter wait canceled", "domain", identifier, "error", err)
		return false, attemptDone
	}

	reqURL, err := c.requestURL(identifier)
	if err != nil {
		c.metrics.RecordRequestError(domain.SourceDomain)
		c.logger.Error("Building domain API URL", "domain", identifier, "error", err)
		return false, attemptDone
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		c.metrics.RecordRequestError(domain.SourceDomain)
		c.logger.Error("Creating domain API request", "domain", identifier, "error", err)
		return false, attemptDone
	}
	req.Header.Set("Authorization", fmt.Sprintf("sso-key %s:%s", c.config.Key, c.config.Secret))
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordRequestError(domain.SourceDomain)
		c.logger.Error("Domain API request failed",
			"domain", identifier,
			"url", util.SanitizeURLDefault(reqURL),
			"error", err)
		return false, attemptDone
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.RecordLatency(domain.SourceDomain, time.Since(start))
	c.metrics.RecordHTTPStatus(domain.SourceDomain, resp.StatusCode)
	if err != nil {
		c.metrics.RecordRequestError(domain.SourceDomain)
		c.logger.Error("Reading domain API response", "domain", identifier, "error", err)
		return false, attemptDone
	}

	class := classifyStatus(resp.StatusCode)
	if class == statusRateLimited || bytes.Contains(body, rateLimitMarker) {
		return false, attemptRateLimited
	}

	if class != statusAnswer {
		c.logger.Warn("Unexpected domain API status",
			"domain", identifier,
			"status", resp.StatusCode)
		return false, attemptDone
	}

	var payload struct {
		Available *bool `json:"available"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Available == nil {
		c.metrics.RecordRequestError(domain.SourceDomain)
		c.logger.Error("Malformed domain API response",
			"domain", identifier,
			"status", resp.StatusCode,
			"error", err)
		return false, attemptDone
	}

	c.logger.Debug("Domain checked",
		"domain", identifier,
		"available", *payload.Available,
		"status", resp.StatusCode)
	return *payload.Available, attemptDone
}

func (c *DomainChecker) requestURL(identifier string) (string, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("domain", identifier)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
