package validate

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Accepted values, exported for CLI enums and help text.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"json", "text"}
)

const (
	// MinMessageBytes is the smallest frame limit that still fits a request envelope.
	MinMessageBytes = 1 << 10
	// MaxMessageBytes caps the configurable frame limit.
	MaxMessageBytes = 256 << 20
)

// Sentinel errors for classification by callers.
var (
	ErrInvalidURL          = errors.New("invalid API URL")
	ErrInvalidTimeout      = errors.New("invalid timeout")
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidLogFormat    = errors.New("invalid log format")
	ErrInvalidMessageLimit = errors.New("invalid message size limit")
)

// ValidateBaseURL checks that s is an absolute http or https URL with a host.
func ValidateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidURL, s)
	}
	return nil
}

// ValidateTimeout requires a positive duration.
func ValidateTimeout(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, d)
	}
	return nil
}

// ValidateLogLevel accepts debug, info, warn or error (case-insensitive).
func ValidateLogLevel(s string) error {
	if !oneOf(s, LogLevels) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidLogLevel, s, strings.Join(LogLevels, ", "))
	}
	return nil
}

// ValidateLogFormat accepts json or text (case-insensitive).
func ValidateLogFormat(s string) error {
	if !oneOf(s, LogFormats) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidLogFormat, s, strings.Join(LogFormats, ", "))
	}
	return nil
}

// ValidateMessageLimit checks the frame size limit bounds.
func ValidateMessageLimit(n int) error {
	if n < MinMessageBytes || n > MaxMessageBytes {
		return fmt.Errorf("%w: %d bytes, must be within %d-%d", ErrInvalidMessageLimit, n, MinMessageBytes, MaxMessageBytes)
	}
	return nil
}

func oneOf(s string, allowed []string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
