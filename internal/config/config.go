// Package config provides configuration management for go-analysis-console.
package config

import "time"

// Config holds all configuration options for the console.
type Config struct {
	// Backend
	BackendURL  string        `json:"backend_url"`
	PollTimeout time.Duration `json:"poll_timeout"`

	// Stabilization
	ThrottleWindow  time.Duration `json:"throttle_window"`
	Dwell           time.Duration `json:"dwell"`
	AlertMinVisible time.Duration `json:"alert_min_visible"`

	// Timers
	PollInterval   time.Duration `json:"poll_interval"`
	HealthInterval time.Duration `json:"health_interval"`

	// Observability
	MetricsAddr string `json:"metrics_addr"`
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text

	// Dashboard
	TUIEnabled bool `json:"tui"`
}

// DefaultConfig returns a Config with sensible defaults. The stabilization
// windows match the backend's frame cadence: events arrive around 10/sec,
// display updates at most ~3/sec, label switches at most every 2s.
func DefaultConfig() *Config {
	return &Config{
		BackendURL:  "http://127.0.0.1:8000",
		PollTimeout: 3 * time.Second,

		ThrottleWindow:  300 * time.Millisecond,
		Dwell:           2 * time.Second,
		AlertMinVisible: 3 * time.Second,

		PollInterval:   2 * time.Second,
		HealthInterval: 5 * time.Second,

		MetricsAddr: "0.0.0.0:17092",
		Verbose:     false,
		LogFormat:   "text",

		TUIEnabled: true,
	}
}
