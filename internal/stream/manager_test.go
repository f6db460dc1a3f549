package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Abhinav2896/go-analysis-console/internal/wire"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubHealth is a scriptable HealthChecker.
type stubHealth struct {
	mu     sync.Mutex
	status *wire.Status
	err    error
	calls  int
}

func (s *stubHealth) Health(ctx context.Context) (*wire.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.status, s.err
}

func (s *stubHealth) set(status *wire.Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.err = err
}

// wsServer serves a websocket endpoint that pushes the given messages and
// then blocks until the client goes away.
func wsServer(t *testing.T, messages []string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var upgrader websocket.Upgrader
	var dials atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		dials.Add(1)
		defer conn.Close()

		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Hold the connection open until the client closes it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &dials
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestState_Strings(t *testing.T) {
	tests := []struct {
		state State
		name  string
		open  bool
	}{
		{StateDisconnected, "disconnected", false},
		{StateConnected, "connected", true},
		{StateProcessing, "processing", true},
		{State(99), "unknown", false},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.name {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.name)
		}
		if got := tt.state.IsOpen(); got != tt.open {
			t.Errorf("State(%d).IsOpen() = %v, want %v", tt.state, got, tt.open)
		}
	}
}

func TestManager_ConnectDeliversRawEvents(t *testing.T) {
	srv, _ := wsServer(t, []string{`{"a":1}`, `{"b":2}`})

	m := NewManager(Config{
		URL:    wsURL(srv),
		Health: &stubHealth{status: &wire.Status{BackendConnected: true}},
		Logger: testLogger(),
	})
	defer m.Disconnect()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := m.State(); got != StateConnected {
		t.Errorf("state after connect = %v, want connected", got)
	}

	for _, want := range []string{`{"a":1}`, `{"b":2}`} {
		select {
		case got := <-m.Events():
			if string(got) != want {
				t.Errorf("event = %s, want %s", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestManager_ConnectIsIdempotent(t *testing.T) {
	srv, dials := wsServer(t, nil)

	m := NewManager(Config{
		URL:    wsURL(srv),
		Health: &stubHealth{status: &wire.Status{BackendConnected: true}},
		Logger: testLogger(),
	})
	defer m.Disconnect()

	ctx := context.Background()
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("second Connect: %v", err)
	}

	// Give the server a beat to register any second upgrade.
	time.Sleep(100 * time.Millisecond)
	if got := dials.Load(); got != 1 {
		t.Errorf("dials = %d, want 1", got)
	}
	if got := m.Reconnects(); got != 1 {
		t.Errorf("Reconnects() = %d, want 1", got)
	}
}

func TestManager_DisconnectIsIdempotent(t *testing.T) {
	srv, _ := wsServer(t, nil)

	var transitions []string
	var mu sync.Mutex
	m := NewManager(Config{
		URL:    wsURL(srv),
		Health: &stubHealth{status: &wire.Status{BackendConnected: true}},
		Logger: testLogger(),
		Callbacks: Callbacks{
			OnStateChange: func(oldState, newState State) {
				mu.Lock()
				transitions = append(transitions, oldState.String()+">"+newState.String())
				mu.Unlock()
			},
		},
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	m.Disconnect()
	m.Disconnect() // second call must be a no-op
	m.Disconnect() // and safe even with nothing to release

	if got := m.State(); got != StateDisconnected {
		t.Errorf("state = %v, want disconnected", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"disconnected>connected", "connected>disconnected"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestManager_DisconnectWithoutConnect(t *testing.T) {
	m := NewManager(Config{
		URL:    "ws://127.0.0.1:1/api/ws",
		Health: &stubHealth{},
		Logger: testLogger(),
	})
	// Teardown before (or after failed) setup must not panic.
	m.Disconnect()
	if got := m.State(); got != StateDisconnected {
		t.Errorf("state = %v, want disconnected", got)
	}
}

func TestManager_ServerCloseMarksDisconnected(t *testing.T) {
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close() // immediate server-side close
	}))
	defer srv.Close()

	m := NewManager(Config{
		URL:    wsURL(srv),
		Health: &stubHealth{status: &wire.Status{BackendConnected: true}},
		Logger: testLogger(),
	})
	defer m.Disconnect()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.State() != StateDisconnected {
		if time.Now().After(deadline) {
			t.Fatal("state never returned to disconnected after server close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestManager_HealthGatesReconnect(t *testing.T) {
	srv, dials := wsServer(t, nil)

	health := &stubHealth{}
	health.set(nil, errors.New("connection refused"))

	m := NewManager(Config{
		URL:            wsURL(srv),
		Health:         health,
		HealthInterval: 20 * time.Millisecond,
		Logger:         testLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// Poll failing: no dial may happen.
	time.Sleep(100 * time.Millisecond)
	if got := dials.Load(); got != 0 {
		t.Fatalf("dials = %d while health failing, want 0", got)
	}

	// Backend reports up but not connected: still no dial.
	health.set(&wire.Status{BackendConnected: false}, nil)
	time.Sleep(100 * time.Millisecond)
	if got := dials.Load(); got != 0 {
		t.Fatalf("dials = %d while backend not ready, want 0", got)
	}

	// Healthy: next poll connects.
	health.set(&wire.Status{BackendConnected: true, VideoStreamActive: true}, nil)
	deadline := time.Now().Add(2 * time.Second)
	for dials.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("never dialed after health recovered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := m.State(); got != StateDisconnected {
		t.Errorf("state after Run exit = %v, want disconnected", got)
	}
}

// TestManager_MarkProcessingRacesServerClose hammers MarkProcessing while
// the server closes every channel on accept. Whatever the interleaving, the
// state must settle at disconnected once the channel is gone: a stale
// processing stamp would stop the health poll from ever redialing.
func TestManager_MarkProcessingRacesServerClose(t *testing.T) {
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	var transitions []string
	var mu sync.Mutex
	m := NewManager(Config{
		URL:    wsURL(srv),
		Health: &stubHealth{status: &wire.Status{BackendConnected: true}},
		Logger: testLogger(),
		Callbacks: Callbacks{
			OnStateChange: func(oldState, newState State) {
				mu.Lock()
				transitions = append(transitions, oldState.String()+">"+newState.String())
				mu.Unlock()
			},
		},
	})
	defer m.Disconnect()

	ctx := context.Background()
	for round := 0; round < 100; round++ {
		if err := m.Connect(ctx); err != nil {
			t.Fatalf("round %d: Connect: %v", round, err)
		}

		stop := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					m.MarkProcessing(true)
				}
			}
		}()

		deadline := time.Now().Add(2 * time.Second)
		for m.State() != StateDisconnected {
			if time.Now().After(deadline) {
				close(stop)
				wg.Wait()
				t.Fatalf("round %d: state = %v with no open channel", round, m.State())
			}
			time.Sleep(time.Millisecond)
		}
		close(stop)
		wg.Wait()

		if got := m.State(); got != StateDisconnected {
			t.Fatalf("round %d: state = %v after channel closed, want disconnected", round, got)
		}
	}

	// Callbacks must have arrived in transition order: each one starts
	// where the previous one ended.
	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(transitions); i++ {
		prevTo := strings.SplitN(transitions[i-1], ">", 2)[1]
		from := strings.SplitN(transitions[i], ">", 2)[0]
		if from != prevTo {
			t.Fatalf("transition %d (%s) does not continue from %s", i, transitions[i], transitions[i-1])
		}
	}
}

func TestManager_MarkProcessing(t *testing.T) {
	srv, _ := wsServer(t, nil)

	m := NewManager(Config{
		URL:    wsURL(srv),
		Health: &stubHealth{status: &wire.Status{BackendConnected: true}},
		Logger: testLogger(),
	})
	defer m.Disconnect()

	// Disconnected: MarkProcessing must not invent an open state.
	m.MarkProcessing(true)
	if got := m.State(); got != StateDisconnected {
		t.Fatalf("state = %v, want disconnected", got)
	}

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	m.MarkProcessing(true)
	if got := m.State(); got != StateProcessing {
		t.Errorf("state = %v, want processing", got)
	}
	m.MarkProcessing(false)
	if got := m.State(); got != StateConnected {
		t.Errorf("state = %v, want connected", got)
	}
}
