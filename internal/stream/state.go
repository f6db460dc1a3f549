// Package stream owns the push-channel subscription to the analysis backend.
package stream

// State represents the connection state of the push channel.
type State int

const (
	// StateDisconnected means no open channel. Reconnection is driven by
	// the health poll, never by the channel itself.
	StateDisconnected State = iota

	// StateConnected means the channel is open but the most recent
	// accepted event reported no face in frame.
	StateConnected

	// StateProcessing means the channel is open and the most recent
	// accepted event had a face in frame.
	StateProcessing
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// IsOpen returns true if the push channel is open in this state.
func (s State) IsOpen() bool {
	return s == StateConnected || s == StateProcessing
}
