// Package validator validates configuration values before a run starts.
package validator

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/vnykmshr/namecheck/internal/util"
)

// invalidFilenameChars are rejected in seed and result file names.
const invalidFilenameChars = `<>:"/\|?*`

// ConfigError describes one invalid configuration value.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Validator collects configuration errors so that all of them can be
// reported at once.
type Validator struct {
	errs []*ConfigError
}

// New creates a new configuration validator
func New() *Validator {
	return &Validator{errs: make([]*ConfigError, 0)}
}

func (v *Validator) fail(field, value, reason string) {
	v.errs = append(v.errs, &ConfigError{Field: field, Value: value, Reason: reason})
}

// Integer checks that value is at least minValue.
func (v *Validator) Integer(field string, value, minValue int) {
	if value < minValue {
		v.fail(field, fmt.Sprint(value), fmt.Sprintf("must be %d or greater", minValue))
	}
}

// Float checks that value is at least minValue.
func (v *Validator) Float(field string, value, minValue float64) {
	if value < minValue {
		v.fail(field, fmt.Sprint(value), fmt.Sprintf("must be %g or greater", minValue))
	}
}

// Duration parses value and checks it is at least minValue.
func (v *Validator) Duration(field, value string, minValue time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		v.fail(field, value, "is not a valid duration")
		return 0
	}
	if d < minValue {
		v.fail(field, value, fmt.Sprintf("must be %s or longer", minValue))
	}
	return d
}

// Filename checks that name is a bare, safe file name.
func (v *Validator) Filename(field, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		v.fail(field, name, "cannot be empty")
	case strings.ContainsAny(name, invalidFilenameChars):
		v.fail(field, name, "contains one or more invalid characters")
	case strings.Contains(name, ".."):
		v.fail(field, name, "contains a potentially unsafe path sequence")
	}
}

// URL checks that raw is an http(s) URL with a host.
func (v *Validator) URL(field, raw string, allowPrivateIPs bool) {
	if err := util.ValidateBaseURL(raw, allowPrivateIPs); err != nil {
		var urlErr *util.URLValidationError
		if errors.As(err, &urlErr) {
			v.fail(field, raw, urlErr.Reason)
			return
		}
		v.fail(field, raw, err.Error())
	}
}

// APIToken checks that a credential is present and free of whitespace.
// The value itself is never included in the error.
func (v *Validator) APIToken(field, token string) {
	if token == "" {
		v.fail(field, "", "cannot be empty")
		return
	}
	if strings.IndexFunc(token, unicode.IsSpace) >= 0 {
		v.fail(field, "", "must not contain whitespace")
	}
}

// OneOf checks that value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.fail(field, value, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
}

// Match checks value against re; what names the expected form in the error.
func (v *Validator) Match(field, value string, re *regexp.Regexp, what string) {
	if !re.MatchString(value) {
		v.fail(field, value, "must be "+what)
	}
}

// Address checks that value is a host:port listen address.
func (v *Validator) Address(field, value string) {
	if _, _, err := net.SplitHostPort(value); err != nil {
		v.fail(field, value, "must be a host:port address")
	}
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "", "cannot be empty")
	}
}

// Err returns all collected errors joined, or nil when every check passed.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	errs := make([]error, len(v.errs))
	for i, e := range v.errs {
		errs[i] = e
	}
	return errors.Join(errs...)
}
