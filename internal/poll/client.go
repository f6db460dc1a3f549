// Package poll provides the low-frequency HTTP side of the backend contract:
// the health/status poll and the supplementary synchronizers for blink, lip,
// and voice fields.
package poll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Abhinav2896/go-analysis-console/internal/wire"
)

// DefaultTimeout bounds each poll request. Polls run on short fixed
// intervals; a request slower than this is as good as failed.
const DefaultTimeout = 3 * time.Second

// Client wraps the backend's REST endpoints.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a Client for the given backend base URL,
// e.g. http://127.0.0.1:8000.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		logger: logger,
	}
}

// Health fetches the backend status. Also used by the connection manager to
// gate push-channel reconnection.
func (c *Client) Health(ctx context.Context) (*wire.Status, error) {
	var out wire.Status
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/status")
	if err != nil {
		return nil, fmt.Errorf("status poll: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("status poll: %s", resp.Status())
	}
	return &out, nil
}

// BlinkStats fetches the blink totals computed by the video pipeline.
func (c *Client) BlinkStats(ctx context.Context) (*wire.BlinkStats, error) {
	var out wire.BlinkStats
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/get_blink_stats")
	if err != nil {
		return nil, fmt.Errorf("blink poll: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("blink poll: %s", resp.Status())
	}
	return &out, nil
}

// LipFrame fetches the current frame-level lip classification. The endpoint
// doubles as a frame analyzer when given image data; an empty body asks for
// the pipeline's current state instead.
func (c *Client) LipFrame(ctx context.Context) (*wire.LipFrame, error) {
	var out wire.LipFrame
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{}).
		SetResult(&out).
		Post("/api/predict_frame")
	if err != nil {
		return nil, fmt.Errorf("lip poll: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("lip poll: %s", resp.Status())
	}
	return &out, nil
}

// VoiceStatus fetches the voice stress analysis state.
func (c *Client) VoiceStatus(ctx context.Context) (*wire.VoiceStatus, error) {
	var out wire.VoiceStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/voice/status")
	if err != nil {
		return nil, fmt.Errorf("voice poll: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("voice poll: %s", resp.Status())
	}
	return &out, nil
}
