package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.BackendURL == "" {
		errs = append(errs, ValidationError{Field: "backend", Message: "backend URL is required"})
	} else if err := validateBackendURL(cfg.BackendURL); err != nil {
		errs = append(errs, ValidationError{Field: "backend", Message: err.Error()})
	}

	if cfg.ThrottleWindow <= 0 {
		errs = append(errs, ValidationError{Field: "throttle", Message: "must be positive"})
	}
	if cfg.Dwell <= 0 {
		errs = append(errs, ValidationError{Field: "dwell", Message: "must be positive"})
	}
	if cfg.AlertMinVisible <= 0 {
		errs = append(errs, ValidationError{Field: "alert_ttl", Message: "must be positive"})
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, ValidationError{Field: "poll_interval", Message: "must be positive"})
	}
	if cfg.HealthInterval <= 0 {
		errs = append(errs, ValidationError{Field: "health_interval", Message: "must be positive"})
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, ValidationError{Field: "log_format", Message: "must be text or json"})
	}

	return errors.Join(errs...)
}

// WSURL derives the push-channel endpoint from the backend base URL.
func WSURL(cfg *Config) string {
	ws := cfg.BackendURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return strings.TrimSuffix(ws, "/") + "/api/ws"
}

func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
