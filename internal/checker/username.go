package checker

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vnykmshr/namecheck/internal/domain"
	"github.com/vnykmshr/namecheck/internal/util"
)

// UsernameConfig configures a UsernameChecker.
type UsernameConfig struct {
	// BaseURL is joined with the username, e.g. "https://api.github.com/users/".
	BaseURL   string
	Token     string
	UserAgent string
}

// UsernameChecker checks whether a GitHub username is unclaimed.
type UsernameChecker struct {
	config  UsernameConfig
	client  *http.Client
	limiter domain.RateLimiter
	metrics domain.MetricsRecorder
	logger  *slog.Logger
}

// NewUsernameChecker creates a username checker. limiter and metrics may be nil.
func NewUsernameChecker(config UsernameConfig, client *http.Client, limiter domain.RateLimiter,
	metrics domain.MetricsRecorder, logger *slog.Logger) *UsernameChecker {
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &UsernameChecker{
		config:  config,
		client:  client,
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
}

// Source implements domain.Checker.
func (c *UsernameChecker) Source() domain.Source {
	return domain.SourceUsername
}

// Check returns one verdict per name, in order, stopping early when ctx is canceled.
func (c *UsernameChecker) Check(ctx context.Context, names []string) []domain.Verdict {
	verdicts := make([]domain.Verdict, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		available := c.checkUsername(ctx, name)
		if ctx.Err() != nil {
			break
		}
		c.metrics.RecordVerdict(domain.SourceUsername, available)
		verdicts = append(verdicts, domain.Verdict{
			Name:       name,
			Source:     domain.SourceUsername,
			Identifier: name,
			Field:      domain.FieldUsername,
			Available:  available,
		})
	}
	return verdicts
}

// checkUsername reports true only on a 404 from the profile endpoint.
func (c *UsernameChecker) checkUsername(ctx context.Context, username string) bool {
	if err := wait(ctx, c.limiter); err != nil {
		c.logger.Warn("Rate limiter wait canceled", "username", username, "error", err)
		return false
	}

	reqURL := c.config.BaseURL + url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		c.metrics.RecordRequestError(domain.SourceUsername)
		c.logger.Error("Creating username API request", "username", username, "error", err)
		return false
	}
	req.Header.Set("Authorization", "token "+c.config.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordRequestError(domain.SourceUsername)
		c.logger.Error("Username API request failed",
			"username", username,
			"url", util.SanitizeURLDefault(reqURL),
			"error", err)
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
	}()

	c.metrics.RecordLatency(domain.SourceUsername, time.Since(start))
	c.metrics.RecordHTTPStatus(domain.SourceUsername, resp.StatusCode)

	switch classifyStatus(resp.StatusCode) {
	case statusNotFound:
		c.logger.Debug("Username checked", "username", username, "available", true)
		return true
	case statusAnswer:
		c.logger.Debug("Username checked", "username", username, "available", false)
		return false
	case statusRateLimited:
		c.metrics.RecordRateLimited(domain.SourceUsername)
		c.logger.Error("Username API rate limited", "username", username, "status", resp.StatusCode)
		return false
	default:
		c.logger.Error("Unexpected username API status", "username", username, "status", resp.StatusCode)
		return false
	}
}
