package util

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

// URLValidationError represents a URL validation failure
type URLValidationError struct {
	URL    string
	Reason string
}

func (e *URLValidationError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.URL, e.Reason)
}

// nonPublicPrefixes are IPv4 ranges that are not covered by the netip
// helpers but are still not routable on the public internet.
var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// ValidateBaseURL validates an availability API endpoint.
// It checks for:
// - Valid URL syntax
// - HTTP or HTTPS scheme only
// - Non-empty host
// - Optional: blocks private/localhost hosts unless allowPrivateIPs is true
func ValidateBaseURL(rawURL string, allowPrivateIPs bool) error {
	if rawURL == "" {
		return &URLValidationError{URL: rawURL, Reason: "URL cannot be empty"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return &URLValidationError{URL: rawURL, Reason: fmt.Sprintf("invalid URL syntax: %v", err)}
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return &URLValidationError{
			URL:    rawURL,
			Reason: fmt.Sprintf("unsupported scheme %q (only http and https allowed)", parsed.Scheme),
		}
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return &URLValidationError{URL: rawURL, Reason: "missing host"}
	}

	if !allowPrivateIPs {
		if err := validatePublicHost(hostname); err != nil {
			return &URLValidationError{URL: rawURL, Reason: err.Error()}
		}
	}

	return nil
}

// validatePublicHost rejects localhost, literal non-public IPs and hostnames
// resolving to them. Unresolvable hostnames are accepted; the request itself
// will fail later.
func validatePublicHost(hostname string) error {
	lowerHost := strings.ToLower(hostname)
	if lowerHost == "localhost" || strings.HasSuffix(lowerHost, ".localhost") {
		return fmt.Errorf("localhost is blocked (use -allow-private-ips for local API mocks)")
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		if IsNonPublicAddr(addr) {
			return fmt.Errorf("private IP %s is blocked (use -allow-private-ips for local API mocks)", addr)
		}
		return nil
	}

	ips, _ := net.LookupIP(hostname)
	for _, ip := range ips {
		addr, ok := netip.AddrFromSlice(ip)
		if ok && IsNonPublicAddr(addr.Unmap()) {
			return fmt.Errorf("hostname %s resolves to private IP %s", hostname, addr)
		}
	}

	return nil
}

// IsNonPublicAddr reports whether addr is loopback, private, link-local,
// multicast, unspecified or in a reserved IPv4 range.
func IsNonPublicAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()

	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return true
	}

	for _, p := range nonPublicPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
