// Package wire defines the JSON contract spoken by the behavioral-analysis
// backend: the push-channel event stream and the supplementary poll payloads.
//
// Inbound data is untrusted. Decode is strict about types (a malformed
// message is rejected as a unit, never partially applied) but lenient about
// optional fields: optional wire fields are modeled as pointers so that
// "field absent" stays distinguishable from "field present with zero value".
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when an inbound message cannot be decoded.
// The caller is expected to drop the message and continue with the next one.
var ErrMalformed = errors.New("malformed payload")

// BlinkStressLevel classifies blink frequency as reported upstream.
// Values mirror the backend's blink detector output verbatim.
const (
	BlinkStressNormal = "Normal"
	BlinkStressMid    = "Stress"
	BlinkStressHigh   = "High Stress"
)

// MicroSnapshot carries one frame's worth of micro-expression analysis.
// Field names follow the backend's snake_case convention.
type MicroSnapshot struct {
	StressIndex           float64  `json:"stress_index"`
	BehavioralStressIndex *float64 `json:"behavioral_stress_index,omitempty"`
	BlinkRate             float64  `json:"blink_rate"`
	BlinkStressLevel      *string  `json:"blink_stress_level,omitempty"`
	BlinkStressScore      *float64 `json:"blink_stress_score,omitempty"`
	Gaze                  string   `json:"gaze"`
	Flags                 []string `json:"flags"`
	MicroExpressions      []string `json:"micro_expressions"`
	LipCompression        *bool    `json:"lip_compression,omitempty"`
	LipCompressionScore   *float64 `json:"lip_compression_score,omitempty"`
	FPS                   *float64 `json:"fps,omitempty"`
}

// StressValue returns the stress metric to plot: the calibrated behavioral
// index when the backend provides one, the raw index otherwise.
func (m *MicroSnapshot) StressValue() float64 {
	if m == nil {
		return 0
	}
	if m.BehavioralStressIndex != nil {
		return *m.BehavioralStressIndex
	}
	return m.StressIndex
}

// AnalysisEvent is one message on the push channel.
//
// Emotion is null and Confidence zero when no face is in frame; the
// FaceDetected flag is the authoritative signal, not the null emotion.
type AnalysisEvent struct {
	Emotion          *string        `json:"emotion"`
	Confidence       float64        `json:"confidence"`
	FaceDetected     bool           `json:"faceDetected"`
	MicroExpressions *MicroSnapshot `json:"micro_expressions"`
	Timestamp        string         `json:"timestamp"`
	BlinkCount       *int           `json:"blink_count,omitempty"`
}

// DecodeAnalysisEvent parses a raw push-channel message.
// Any decode failure is reported as ErrMalformed; the input is never
// partially applied.
func DecodeAnalysisEvent(data []byte) (*AnalysisEvent, error) {
	var ev AnalysisEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validateEvent(&ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &ev, nil
}

// validateEvent rejects events that decoded syntactically but violate the
// contract in ways that would corrupt downstream state.
func validateEvent(ev *AnalysisEvent) error {
	if ev.Confidence < 0 || ev.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", ev.Confidence)
	}
	if ev.FaceDetected && ev.Emotion == nil {
		return errors.New("faceDetected without emotion")
	}
	return nil
}
