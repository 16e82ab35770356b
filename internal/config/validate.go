package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config for invalid values and returns all errors found.
// Dangerous zero-values that would cause panics are clamped to safe defaults.
// Other validation errors are logged as warnings but do not prevent startup.
func (c *Config) Validate() []error {
	var errs []error

	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("server_url %q is not a valid URL: %w", c.ServerURL, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("server_url scheme must be http or https, got %q", u.Scheme))
		}
	}

	if c.InstallationKey != "" {
		for _, r := range c.InstallationKey {
			if unicode.IsControl(r) {
				errs = append(errs, fmt.Errorf("installation_key contains control characters"))
				break
			}
		}
	}

	// Clamp intervals to safe range to prevent panics (e.g. rand.Int64N(0))
	if c.PollIntervalSeconds < 5 {
		errs = append(errs, fmt.Errorf("poll_interval_seconds %d is below minimum 5, clamping", c.PollIntervalSeconds))
		c.PollIntervalSeconds = 5
	} else if c.PollIntervalSeconds > 3600 {
		errs = append(errs, fmt.Errorf("poll_interval_seconds %d exceeds maximum 3600, clamping", c.PollIntervalSeconds))
		c.PollIntervalSeconds = 3600
	}

	// Per-call timeout is contractually 10-30 seconds
	if c.RequestTimeoutSeconds < 10 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds %d is below minimum 10, clamping", c.RequestTimeoutSeconds))
		c.RequestTimeoutSeconds = 10
	} else if c.RequestTimeoutSeconds > 30 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds %d exceeds maximum 30, clamping", c.RequestTimeoutSeconds))
		c.RequestTimeoutSeconds = 30
	}

	if c.UpdateCheckMinutes < 1 {
		errs = append(errs, fmt.Errorf("update_check_minutes %d is below minimum 1, clamping", c.UpdateCheckMinutes))
		c.UpdateCheckMinutes = 1
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	// Log validation errors as warnings
	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}
