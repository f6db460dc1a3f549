package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Abhinav2896/go-analysis-console/internal/wire"
)

// DefaultHealthInterval is the health poll cadence driving reconnection.
const DefaultHealthInterval = 5 * time.Second

// eventBuffer bounds the raw message channel. The session loop drains far
// faster than the backend's frame cadence; the buffer only absorbs the gap
// between the reader goroutine and a loop iteration.
const eventBuffer = 64

// HealthChecker reports whether the remote service is ready for a
// subscription attempt.
type HealthChecker interface {
	Health(ctx context.Context) (*wire.Status, error)
}

// Callbacks contains optional callback functions for connection events.
type Callbacks struct {
	// OnStateChange is called when the connection state changes.
	OnStateChange func(oldState, newState State)
}

// Config holds configuration for creating a Manager.
type Config struct {
	// URL is the websocket endpoint, e.g. ws://127.0.0.1:8000/api/ws.
	URL string

	// Health gates reconnection; a connect is only attempted after the
	// health poll reports the backend up.
	Health HealthChecker

	// HealthInterval is the poll cadence (default 5s).
	HealthInterval time.Duration

	Logger    *slog.Logger
	Callbacks Callbacks

	// Dialer overrides the websocket dialer (tests). Nil uses the default.
	Dialer *websocket.Dialer
}

// Manager owns the push channel: it dials, reads, and tears down the
// websocket, and runs the health poll that decides when to redial.
//
// Reconnection is two-tier on purpose: a channel error only moves the state
// to disconnected, it never retries the dial. The health poll observes the
// remote service and re-invokes Connect when it comes back. A backend that
// stays down for an hour costs one status request per interval, not a
// reconnect storm.
type Manager struct {
	cfg    Config
	logger *slog.Logger
	dialer *websocket.Dialer

	events chan []byte

	// cbMu serializes state transitions end to end, including callback
	// delivery, so OnStateChange always fires in transition order and a
	// transition can never interleave with a conn check.
	cbMu sync.Mutex

	mu    sync.Mutex
	conn  *websocket.Conn
	state State

	reconnects int64
}

// NewManager creates a Manager. Events received on the channel are delivered
// raw on Events(); the caller feeds them through its throttle gate before
// any decoding.
func NewManager(cfg Config) *Manager {
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultHealthInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &Manager{
		cfg:    cfg,
		logger: cfg.Logger,
		dialer: dialer,
		events: make(chan []byte, eventBuffer),
		state:  StateDisconnected,
	}
}

// Events returns the raw inbound message channel. Closed messages are never
// sent; the channel simply goes quiet while disconnected.
func (m *Manager) Events() <-chan []byte {
	return m.events
}

// Run drives the health poll loop until the context is cancelled. An
// immediate first check avoids waiting a full interval at startup. On exit
// the channel is torn down.
func (m *Manager) Run(ctx context.Context) error {
	m.checkAndConnect(ctx)

	ticker := time.NewTicker(m.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Disconnect()
			return ctx.Err()
		case <-ticker.C:
			m.checkAndConnect(ctx)
		}
	}
}

// checkAndConnect polls health and, if the backend is up and no channel is
// open, attempts a connect. Poll failure is logged and swallowed: a down
// backend is the normal case this loop exists for.
func (m *Manager) checkAndConnect(ctx context.Context) {
	if m.State().IsOpen() {
		return
	}

	status, err := m.cfg.Health.Health(ctx)
	if err != nil {
		m.logger.Debug("health_poll_failed", "error", err)
		return
	}
	if !status.BackendConnected {
		m.logger.Debug("backend_not_ready", "video_stream_active", status.VideoStreamActive)
		return
	}

	if err := m.Connect(ctx); err != nil {
		m.logger.Warn("channel_connect_failed", "url", m.cfg.URL, "error", err)
	}
}

// Connect opens the push channel and starts the read loop. Idempotent: a
// second call while a channel is open is a no-op.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.conn != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	conn, _, err := m.dialer.DialContext(ctx, m.cfg.URL, nil)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.conn != nil {
		// Lost the race against a concurrent Connect; keep the first.
		m.mu.Unlock()
		conn.Close()
		return nil
	}
	m.conn = conn
	m.reconnects++
	m.mu.Unlock()

	m.setState(StateConnected)
	m.logger.Info("channel_connected", "url", m.cfg.URL)

	go m.readLoop(conn)
	return nil
}

// Disconnect closes any open channel. Idempotent and safe to call during or
// after a failed setup.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	m.setState(StateDisconnected)
}

// readLoop reads messages until the channel errors or closes, then marks the
// manager disconnected. Reconnection is left to the health poll.
func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.logger.Info("channel_closed", "error", err)
			m.mu.Lock()
			owned := m.conn == conn
			if owned {
				m.conn = nil
			}
			m.mu.Unlock()
			conn.Close()
			// Not owned means Disconnect already took the channel and
			// reported the transition.
			if owned {
				m.setState(StateDisconnected)
			}
			return
		}

		select {
		case m.events <- data:
		default:
			// Reader outran the session loop; drop the oldest-style by
			// dropping this message. The throttle gate downstream was
			// going to discard most of the backlog anyway.
			m.logger.Debug("event_buffer_full")
		}
	}
}

// MarkProcessing reflects the most recent accepted event's face flag into
// the connection state. No-op while disconnected.
//
// The conn check and the state write happen in one critical section: if the
// read loop tears the channel down concurrently, its disconnect transition
// is ordered after this one and the state cannot end up open with no
// channel, which would stop the health poll from ever redialing.
func (m *Manager) MarkProcessing(faceDetected bool) {
	newState := StateConnected
	if faceDetected {
		newState = StateProcessing
	}

	m.cbMu.Lock()
	defer m.cbMu.Unlock()

	m.mu.Lock()
	if m.conn == nil {
		m.mu.Unlock()
		return
	}
	oldState := m.state
	m.state = newState
	m.mu.Unlock()

	m.notify(oldState, newState)
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reconnects returns the number of successful channel opens this session.
func (m *Manager) Reconnects() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reconnects
}

// setState updates the state and calls the callback if registered.
func (m *Manager) setState(newState State) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()

	m.mu.Lock()
	oldState := m.state
	m.state = newState
	m.mu.Unlock()

	m.notify(oldState, newState)
}

// notify delivers the state-change callback. Must be called with cbMu held;
// the callback itself runs without the state lock, so observers may call
// State() freely.
func (m *Manager) notify(oldState, newState State) {
	if m.cfg.Callbacks.OnStateChange != nil && oldState != newState {
		m.cfg.Callbacks.OnStateChange(oldState, newState)
	}
}
