// Package main provides the go-analysis-console CLI entry point.
//
// go-analysis-console subscribes to the behavioral-analysis backend's event
// stream, stabilizes it for human consumption, and renders a live terminal
// dashboard.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Abhinav2896/go-analysis-console/internal/config"
	"github.com/Abhinav2896/go-analysis-console/internal/logging"
	"github.com/Abhinav2896/go-analysis-console/internal/metrics"
	"github.com/Abhinav2896/go-analysis-console/internal/poll"
	"github.com/Abhinav2896/go-analysis-console/internal/tui"
	"github.com/Abhinav2896/go-analysis-console/internal/view"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-analysis-console
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("go-analysis-console %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	// When the TUI owns the terminal, log lines would tear the screen.
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.Discard()
	} else {
		logger = logging.New(cfg.LogFormat, cfg.Verbose)
	}
	slog.SetDefault(logger)

	logger.Info("starting",
		"version", version,
		"backend", cfg.BackendURL,
		"throttle", cfg.ThrottleWindow.String(),
		"dwell", cfg.Dwell.String(),
		"metrics_addr", cfg.MetricsAddr,
	)

	metrics.Register(nil)
	var metricsSrv *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = metrics.NewServer(cfg.MetricsAddr, logger)
		metricsSrv.Start()
	}

	client := poll.NewClient(cfg.BackendURL, cfg.PollTimeout, logger)
	session, err := view.NewSession(view.Config{
		WSURL:           config.WSURL(cfg),
		Poller:          client,
		ThrottleWindow:  cfg.ThrottleWindow,
		Dwell:           cfg.Dwell,
		AlertMinVisible: cfg.AlertMinVisible,
		PollInterval:    cfg.PollInterval,
		HealthInterval:  cfg.HealthInterval,
		Logger:          logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session.Start(ctx)
	defer session.Close()

	if metricsSrv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.TUIEnabled {
		return runDashboard(cfg, session)
	}
	return runHeadless(ctx, logger, session)
}

// runDashboard hands the terminal to the TUI until the user quits.
func runDashboard(cfg *config.Config, session *view.Session) int {
	model := tui.New(tui.Config{
		BackendURL:  cfg.BackendURL,
		MetricsAddr: cfg.MetricsAddr,
		Source:      session,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Dashboard error: %v\n", err)
		return 1
	}
	return 0
}

// runHeadless logs a periodic state summary until interrupted. Useful for
// supervising the backend from scripts with only the metrics endpoint.
func runHeadless(ctx context.Context, logger *slog.Logger, session *view.Session) int {
	printBanner()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting_down")
			return 0
		case <-ticker.C:
			snap := session.Snapshot()
			emotion := "none"
			if snap.Emotion != nil {
				emotion = fmt.Sprintf("%s(%d%%)", snap.Emotion.Name, snap.Emotion.ConfidencePercent)
			}
			logger.Info("state_summary",
				"connection", snap.ConnState.String(),
				"emotion", emotion,
				"alerts", len(snap.Alerts),
				"events_received", snap.EventsReceived,
				"events_shown", snap.EventsForwarded,
			)
		}
	}
}

// printBanner prints the startup banner.
func printBanner() {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Println("║                   go-analysis-console                    ║")
	fmt.Println("║      Stabilized behavioral-analysis stream viewer        ║")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()
}
