package wire

// Status is the health/status poll payload. It doubles as the reconnect
// gate: the push channel is only redialed when BackendConnected is true.
type Status struct {
	BackendConnected  bool `json:"backendConnected"`
	ModelLoaded       bool `json:"modelLoaded"`
	VideoStreamActive bool `json:"videoStreamActive"`
}

// BlinkStats is the blink statistics poll payload.
// BlinkPerMin is null until the backend has a full observation window.
type BlinkStats struct {
	BlinkCount  int      `json:"blink_count"`
	BlinkPerMin *float64 `json:"blink_per_min"`
}

// LipFrame is the frame-level lip classification poll payload.
// Known states are "lip_calm" and "lip_compression".
type LipFrame struct {
	LipState   string  `json:"lip_state"`
	Confidence float64 `json:"confidence"`
}

// VoiceStatus is the voice stress analysis poll payload.
// StressLevel is "CALM" or "HIGH"; dimensional scores are in [0,1].
type VoiceStatus struct {
	ModelLoaded bool    `json:"model_loaded"`
	Language    string  `json:"language"`
	Arousal     float64 `json:"arousal"`
	Dominance   float64 `json:"dominance"`
	Valence     float64 `json:"valence"`
	StressLevel string  `json:"stress_level"`
	StressScore float64 `json:"stress_score"`
}
