// Package util provides URL validation and log redaction helpers.
package util

import (
	"net/url"
	"strings"
)

// redacted replaces sensitive values in logged URLs.
const redacted = "[REDACTED]"

// DefaultSensitiveParams contains query parameter names whose values are never logged
var DefaultSensitiveParams = []string{
	"api_key", "apikey", "api-key",
	"key", "secret", "client_secret",
	"token", "access_token", "auth_token", "auth",
	"sso-key", "authorization",
}

// SanitizeURL redacts sensitive query parameters from a URL for safe logging.
// Parameters matching the sensitive list (case-insensitive) are replaced with "[REDACTED]".
// Userinfo (user:password@) is always redacted.
func SanitizeURL(rawURL string, sensitiveParams []string) string {
	if rawURL == "" {
		return ""
	}
	if len(sensitiveParams) == 0 {
		sensitiveParams = DefaultSensitiveParams
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	modified := false
	if parsedURL.User != nil {
		parsedURL.User = url.User(redacted)
		modified = true
	}

	if parsedURL.RawQuery != "" {
		sensitive := make(map[string]bool, len(sensitiveParams))
		for _, param := range sensitiveParams {
			sensitive[strings.ToLower(param)] = true
		}

		query := parsedURL.Query()
		for key := range query {
			if sensitive[strings.ToLower(key)] {
				query.Set(key, redacted)
				modified = true
			}
		}
		if modified {
			parsedURL.RawQuery = query.Encode()
		}
	}

	if !modified {
		return rawURL
	}
	return parsedURL.String()
}

// SanitizeURLDefault redacts sensitive parameters using the default list
func SanitizeURLDefault(rawURL string) string {
	return SanitizeURL(rawURL, nil)
}

// MaskSecret keeps the last four characters of a credential for log correlation.
// Secrets of eight characters or fewer are fully masked.
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
