package metrics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Abhinav2896/go-analysis-console/internal/stream"
)

func TestRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	EventReceived()
	EventReceived()
	EventThrottled()
	EventMalformed()
	Reconnect()
	PollFailure("blink")
	PollFailure("blink")
	PollFailure("voice")
	SetConnectionState(stream.StateProcessing)
	SetStressIndex(42.5)
	SetVisibleAlerts(3)

	if got := testutil.ToFloat64(eventsReceivedTotal); got != 2 {
		t.Errorf("events received = %v, want 2", got)
	}
	if got := testutil.ToFloat64(eventsThrottledTotal); got != 1 {
		t.Errorf("events throttled = %v, want 1", got)
	}
	if got := testutil.ToFloat64(connectionState); got != 2 {
		t.Errorf("connection state = %v, want 2 (processing)", got)
	}
	if got := testutil.ToFloat64(pollFailuresTotal.WithLabelValues("blink")); got != 2 {
		t.Errorf("blink poll failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(stressIndex); got != 42.5 {
		t.Errorf("stress index = %v, want 42.5", got)
	}
	if got := testutil.ToFloat64(visibleAlerts); got != 3 {
		t.Errorf("visible alerts = %v, want 3", got)
	}
}

func TestServerServesMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer("127.0.0.1:17191", logger)
	srv.Start()
	defer srv.Shutdown(context.Background())

	var resp *http.Response
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get("http://" + srv.Addr() + "/metrics")
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	health, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer health.Body.Close()
	body, _ := io.ReadAll(health.Body)
	if !strings.Contains(string(body), "ok") {
		t.Errorf("healthz body = %q, want ok", body)
	}
}
