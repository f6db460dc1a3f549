package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Abhinav2896/go-analysis-console/internal/alerts"
	"github.com/Abhinav2896/go-analysis-console/internal/history"
	"github.com/Abhinav2896/go-analysis-console/internal/hysteresis"
	"github.com/Abhinav2896/go-analysis-console/internal/metrics"
	"github.com/Abhinav2896/go-analysis-console/internal/poll"
	"github.com/Abhinav2896/go-analysis-console/internal/stream"
	"github.com/Abhinav2896/go-analysis-console/internal/throttle"
	"github.com/Abhinav2896/go-analysis-console/internal/wire"
)

// Poller is the subset of the backend REST client the session needs.
type Poller interface {
	stream.HealthChecker
	BlinkStats(ctx context.Context) (*wire.BlinkStats, error)
	LipFrame(ctx context.Context) (*wire.LipFrame, error)
	VoiceStatus(ctx context.Context) (*wire.VoiceStatus, error)
}

// Config holds configuration for creating a Session.
type Config struct {
	// WSURL is the push-channel endpoint.
	WSURL string

	// Poller serves the health poll and the supplementary synchronizers.
	Poller Poller

	ThrottleWindow  time.Duration // default throttle.DefaultWindow
	Dwell           time.Duration // default hysteresis.DefaultDwell
	AlertMinVisible time.Duration // default alerts.DefaultMinVisible
	PollInterval    time.Duration // default poll.DefaultInterval
	HealthInterval  time.Duration // default stream.DefaultHealthInterval

	Logger *slog.Logger
}

// Session wires the connection manager, throttle gate, stabilizers, and
// polling synchronizers around one Model.
//
// All event-stream mutation happens on a single loop goroutine; poll merges
// and the connection-state callback take the snapshot lock for their own
// atomic merges. Readers only ever see a fully merged tick via Snapshot.
//
// Resources (the channel, the health poll, every synchronizer ticker) are
// acquired in Start and released together in Close. Close runs its teardown
// exactly once and is safe to call even if Start failed part-way or was
// never called.
type Session struct {
	cfg    Config
	logger *slog.Logger

	manager   *stream.Manager
	throttler *throttle.Throttler
	selector  *hysteresis.Selector
	alertMgr  *alerts.Manager
	buffer    *history.Buffer
	dist      *history.Distribution

	mu       sync.RWMutex
	snapshot Model

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSession creates a Session. Start must be called before events flow.
func NewSession(cfg Config) (*Session, error) {
	if cfg.WSURL == "" {
		return nil, errors.New("view: websocket URL is required")
	}
	if cfg.Poller == nil {
		return nil, errors.New("view: poller is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Session{
		cfg:       cfg,
		logger:    cfg.Logger,
		throttler: throttle.New(cfg.ThrottleWindow),
		selector:  hysteresis.NewSelector(cfg.Dwell),
		alertMgr:  alerts.NewManager(cfg.AlertMinVisible),
		buffer:    history.NewBuffer(),
		dist:      history.NewDistribution(),
	}
	s.snapshot.StressHistory = s.buffer.Values()
	s.snapshot.LipState = "lip_calm"

	s.manager = stream.NewManager(stream.Config{
		URL:            cfg.WSURL,
		Health:         cfg.Poller,
		HealthInterval: cfg.HealthInterval,
		Logger:         cfg.Logger,
		Callbacks: stream.Callbacks{
			OnStateChange: s.onStateChange,
		},
	})

	return s, nil
}

// Start acquires the session's resources: the push channel (via its health
// poll), the event loop, and one synchronizer per supplementary endpoint.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.manager.Run(ctx)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.eventLoop(ctx)
	}()

	syncers := []*poll.Synchronizer{
		poll.NewSynchronizer("blink", s.cfg.PollInterval, s.logger, s.syncBlink),
		poll.NewSynchronizer("lip", s.cfg.PollInterval, s.logger, s.syncLip),
		poll.NewSynchronizer("voice", s.cfg.PollInterval, s.logger, s.syncVoice),
	}
	for _, syncer := range syncers {
		s.wg.Add(1)
		go func(syncer *poll.Synchronizer) {
			defer s.wg.Done()
			syncer.Run(ctx)
		}(syncer)
	}

	s.logger.Info("session_started", "ws_url", s.cfg.WSURL)
}

// Close tears the session down: cancels every timer and the channel, waits
// for the loops to drain, and resets the stabilizer state. Exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		s.manager.Disconnect()

		s.throttler.Reset()
		s.selector.Reset()
		s.alertMgr.Reset()
		s.buffer.Reset()
		s.dist.Reset()

		s.logger.Info("session_closed")
	})
}

// Snapshot returns a consistent copy of the view model.
func (s *Session) Snapshot() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// State returns the current connection state.
func (s *Session) State() stream.State {
	return s.manager.State()
}

// eventLoop is the single goroutine that consumes the push channel. Raw
// messages hit the throttle gate before anything else; accepted messages are
// decoded and fanned out to the stabilizers, and the snapshot is replaced in
// one locked write at the end of the tick.
func (s *Session) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-s.manager.Events():
			s.processRaw(raw)
		}
	}
}

func (s *Session) processRaw(raw []byte) {
	metrics.EventReceived()

	if !s.throttler.Offer() {
		metrics.EventThrottled()
		s.updateCounters()
		return
	}

	ev, err := wire.DecodeAnalysisEvent(raw)
	if err != nil {
		// Discard the single event; the counters still move so the
		// footer reflects the receive, but no display state mutates.
		metrics.EventMalformed()
		s.logger.Debug("event_discarded", "error", err)
		offered, forwarded, dropped := s.throttler.Stats()
		s.mu.Lock()
		s.snapshot.EventsMalformed++
		s.snapshot.EventsReceived = offered
		s.snapshot.EventsForwarded = forwarded
		s.snapshot.EventsDropped = dropped
		s.mu.Unlock()
		return
	}

	s.applyEvent(ev, time.Now())
}

// applyEvent fans one accepted event out to the hysteresis selector, the
// alert manager, and the stress buffer, then merges the results into the
// snapshot as one tick.
func (s *Session) applyEvent(ev *wire.AnalysisEvent, now time.Time) {
	emotion := ""
	if ev.Emotion != nil {
		emotion = *ev.Emotion
	}
	displayed := s.selector.Observe(ev.FaceDetected, emotion, ev.Confidence, now)

	// Alert expiry must progress on every tick, so a nil snapshot still
	// feeds an empty flag list through the manager.
	var flags []string
	if ev.MicroExpressions != nil {
		flags = ev.MicroExpressions.Flags
	}
	visible := s.alertMgr.Update(flags, now)

	stress := ev.MicroExpressions.StressValue()
	s.buffer.Push(stress)
	if ev.MicroExpressions != nil {
		s.dist.Add(stress)
		metrics.SetStressIndex(stress)
	}

	s.manager.MarkProcessing(ev.FaceDetected)

	offered, forwarded, dropped := s.throttler.Stats()

	s.mu.Lock()
	s.snapshot.Emotion = displayed
	if ev.MicroExpressions != nil {
		s.snapshot.Micro = ev.MicroExpressions
	}
	s.snapshot.StressHistory = s.buffer.Values()
	s.snapshot.Alerts = visible
	s.snapshot.LastEventAt = now
	if ev.BlinkCount != nil {
		s.snapshot.BlinkCount = *ev.BlinkCount
	}
	s.snapshot.StressP50 = s.dist.P50()
	s.snapshot.StressP95 = s.dist.P95()
	s.snapshot.StressMax = s.dist.Max()
	s.snapshot.StressSamples = s.dist.Count()
	s.snapshot.EventsReceived = offered
	s.snapshot.EventsForwarded = forwarded
	s.snapshot.EventsDropped = dropped
	s.mu.Unlock()

	metrics.SetVisibleAlerts(len(visible))
}

func (s *Session) updateCounters() {
	offered, forwarded, dropped := s.throttler.Stats()
	s.mu.Lock()
	s.snapshot.EventsReceived = offered
	s.snapshot.EventsForwarded = forwarded
	s.snapshot.EventsDropped = dropped
	s.mu.Unlock()
}

// onStateChange mirrors connection state into the snapshot and metrics.
func (s *Session) onStateChange(oldState, newState stream.State) {
	s.mu.Lock()
	s.snapshot.ConnState = newState
	s.mu.Unlock()

	metrics.SetConnectionState(newState)
	if oldState == stream.StateDisconnected && newState.IsOpen() {
		metrics.Reconnect()
	}
	s.logger.Info("connection_state_changed", "from", oldState.String(), "to", newState.String())
}

// --- Polling synchronizers ---------------------------------------------
//
// Each fetch merges independently and atomically. A failed fetch returns an
// error and touches nothing: the snapshot keeps its last known values.

func (s *Session) syncBlink(ctx context.Context) error {
	stats, err := s.cfg.Poller.BlinkStats(ctx)
	if err != nil {
		metrics.PollFailure("blink")
		return err
	}
	s.mu.Lock()
	s.snapshot.BlinkCount = stats.BlinkCount
	s.snapshot.BlinkPerMin = stats.BlinkPerMin
	s.mu.Unlock()
	return nil
}

func (s *Session) syncLip(ctx context.Context) error {
	lip, err := s.cfg.Poller.LipFrame(ctx)
	if err != nil {
		metrics.PollFailure("lip")
		return err
	}
	s.mu.Lock()
	s.snapshot.LipState = lip.LipState
	s.snapshot.LipConfidence = lip.Confidence
	s.mu.Unlock()
	return nil
}

func (s *Session) syncVoice(ctx context.Context) error {
	voice, err := s.cfg.Poller.VoiceStatus(ctx)
	if err != nil {
		metrics.PollFailure("voice")
		return err
	}
	s.mu.Lock()
	s.snapshot.Voice = voice
	s.mu.Unlock()
	return nil
}
