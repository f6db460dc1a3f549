// Package history provides the fixed-size stress timeline for the dashboard.
//
// The buffer is a pure append-and-evict sliding window: exactly Size values
// at all times, newest at the tail, initialized to zeros. No smoothing or
// interpolation happens here; the buffer stores what it is given (clamped to
// the display range) and the renderer draws it as-is.
package history

// Size is the number of timeline samples, one per accepted event.
const Size = 60

const (
	minValue = 0.0
	maxValue = 100.0
)

// Buffer is a fixed-length ring of stress values.
//
// Not safe for concurrent use: Push runs on the session loop, and readers
// get an independent copy via Values.
type Buffer struct {
	values   [Size]float64
	writeIdx int
}

// NewBuffer returns a buffer holding Size zeros.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Push appends a value at the tail, evicting the oldest. Values outside
// [0,100] are clamped, not rejected: an out-of-range stress reading still
// represents a real sample.
func (b *Buffer) Push(value float64) {
	if value < minValue {
		value = minValue
	}
	if value > maxValue {
		value = maxValue
	}
	b.values[b.writeIdx] = value
	b.writeIdx = (b.writeIdx + 1) % Size
}

// Values returns the timeline oldest-first, newest at the tail.
// The returned slice is a copy; callers may hold it across ticks.
func (b *Buffer) Values() []float64 {
	out := make([]float64, Size)
	for i := 0; i < Size; i++ {
		out[i] = b.values[(b.writeIdx+i)%Size]
	}
	return out
}

// Last returns the most recently pushed value.
func (b *Buffer) Last() float64 {
	return b.values[(b.writeIdx+Size-1)%Size]
}

// Reset zeroes the buffer. Called on session teardown.
func (b *Buffer) Reset() {
	b.values = [Size]float64{}
	b.writeIdx = 0
}
