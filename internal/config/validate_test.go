package config

import (
	"strings"
	"testing"
)

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config produced validation errors: %v", errs)
	}
}

func TestValidateClampsPollInterval(t *testing.T) {
	cfg := Default()
	cfg.PollIntervalSeconds = 0
	errs := cfg.Validate()
	if cfg.PollIntervalSeconds != 5 {
		t.Errorf("poll interval = %d, want clamped to 5", cfg.PollIntervalSeconds)
	}
	if len(errs) == 0 {
		t.Error("expected a validation error for zero poll interval")
	}

	cfg.PollIntervalSeconds = 100000
	cfg.Validate()
	if cfg.PollIntervalSeconds != 3600 {
		t.Errorf("poll interval = %d, want clamped to 3600", cfg.PollIntervalSeconds)
	}
}

func TestValidateClampsRequestTimeoutToContractRange(t *testing.T) {
	cfg := Default()
	cfg.RequestTimeoutSeconds = 2
	cfg.Validate()
	if cfg.RequestTimeoutSeconds != 10 {
		t.Errorf("request timeout = %d, want 10", cfg.RequestTimeoutSeconds)
	}

	cfg.RequestTimeoutSeconds = 120
	cfg.Validate()
	if cfg.RequestTimeoutSeconds != 30 {
		t.Errorf("request timeout = %d, want 30", cfg.RequestTimeoutSeconds)
	}
}

func TestValidateRejectsBadServerURL(t *testing.T) {
	cfg := Default()
	cfg.ServerURL = "ftp://example.com"
	errs := cfg.Validate()
	found := false
	for _, err := range errs {
		if strings.Contains(err.Error(), "scheme") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected scheme error for ftp URL, got %v", errs)
	}
}

func TestValidateRejectsControlCharactersInKey(t *testing.T) {
	cfg := Default()
	cfg.InstallationKey = "abc\x00def"
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Error("expected error for control characters in installation key")
	}
}

func TestValidateRejectsUnknownLogSettings(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	cfg.LogFormat = "xml"
	errs := cfg.Validate()
	if len(errs) < 2 {
		t.Errorf("expected errors for log level and format, got %v", errs)
	}
}
