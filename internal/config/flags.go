package config

import (
	"flag"
	"fmt"
	"os"
)

// ParseFlags parses command-line flags and returns a Config.
func ParseFlags() (*Config, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (*Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("go-analysis-console", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `go-analysis-console - live dashboard for the behavioral analysis backend

Usage:
  go-analysis-console [flags]

Backend:
`)
		printFlag(fs, "backend", "poll-timeout")
		fmt.Fprintf(fs.Output(), "\nStabilization:\n")
		printFlag(fs, "throttle", "dwell", "alert-ttl")
		fmt.Fprintf(fs.Output(), "\nTimers:\n")
		printFlag(fs, "poll-interval", "health-interval")
		fmt.Fprintf(fs.Output(), "\nObservability:\n")
		printFlag(fs, "metrics", "v", "log-format")
		fmt.Fprintf(fs.Output(), "\nDashboard:\n")
		printFlag(fs, "tui")
	}

	fs.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "Backend base URL")
	fs.DurationVar(&cfg.PollTimeout, "poll-timeout", cfg.PollTimeout, "Per-request poll timeout")

	fs.DurationVar(&cfg.ThrottleWindow, "throttle", cfg.ThrottleWindow, "Event forwarding window (one event per window)")
	fs.DurationVar(&cfg.Dwell, "dwell", cfg.Dwell, "Minimum hold before the emotion label may switch")
	fs.DurationVar(&cfg.AlertMinVisible, "alert-ttl", cfg.AlertMinVisible, "Minimum time an alert stays visible")

	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Supplementary poll cadence")
	fs.DurationVar(&cfg.HealthInterval, "health-interval", cfg.HealthInterval, "Health poll cadence (drives reconnection)")

	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics listen address (empty disables)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose (debug) logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")

	fs.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Render the terminal dashboard (false: headless, logs only)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printFlag(fs *flag.FlagSet, names ...string) {
	for _, name := range names {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(fs.Output(), "  -%-16s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
	}
}
