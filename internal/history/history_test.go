package history

import "testing"

func TestBuffer_AlwaysFullLength(t *testing.T) {
	b := NewBuffer()

	if got := len(b.Values()); got != Size {
		t.Fatalf("fresh buffer length = %d, want %d", got, Size)
	}

	for i := 0; i < Size*3; i++ {
		b.Push(float64(i % 100))
		if got := len(b.Values()); got != Size {
			t.Fatalf("after push %d: length = %d, want %d", i, got, Size)
		}
	}
}

func TestBuffer_InitializedToZeros(t *testing.T) {
	b := NewBuffer()
	for i, v := range b.Values() {
		if v != 0 {
			t.Fatalf("values[%d] = %v, want 0", i, v)
		}
	}
}

// Seeded with zeros, pushing [10, 20, 150, -5] yields a tail of
// [10, 20, 100, 0] with length unchanged.
func TestBuffer_ClampedTail(t *testing.T) {
	b := NewBuffer()
	for _, v := range []float64{10, 20, 150, -5} {
		b.Push(v)
	}

	values := b.Values()
	if len(values) != Size {
		t.Fatalf("length = %d, want %d", len(values), Size)
	}

	wantTail := []float64{10, 20, 100, 0}
	tail := values[Size-4:]
	for i, want := range wantTail {
		if tail[i] != want {
			t.Errorf("tail[%d] = %v, want %v", i, tail[i], want)
		}
	}
}

func TestBuffer_OldestEvicted(t *testing.T) {
	b := NewBuffer()
	for i := 1; i <= Size+5; i++ {
		b.Push(float64(i % 100))
	}

	values := b.Values()
	// Pushes 1..65 (mod 100): the first five were evicted, so the head is 6.
	if values[0] != 6 {
		t.Errorf("head = %v, want 6", values[0])
	}
	if b.Last() != 65 {
		t.Errorf("Last() = %v, want 65", b.Last())
	}
}

func TestBuffer_ValuesIsACopy(t *testing.T) {
	b := NewBuffer()
	b.Push(50)
	values := b.Values()
	values[0] = 99

	if b.Values()[0] == 99 {
		t.Error("mutating the returned slice leaked into the buffer")
	}
}

func TestBuffer_Reset(t *testing.T) {
	b := NewBuffer()
	b.Push(42)
	b.Reset()
	for i, v := range b.Values() {
		if v != 0 {
			t.Fatalf("after Reset: values[%d] = %v, want 0", i, v)
		}
	}
}

func TestDistribution_Percentiles(t *testing.T) {
	d := NewDistribution()

	if d.P50() != 0 || d.P95() != 0 || d.Max() != 0 {
		t.Error("empty distribution should report zeros")
	}

	for i := 1; i <= 100; i++ {
		d.Add(float64(i))
	}

	if d.Count() != 100 {
		t.Errorf("Count() = %d, want 100", d.Count())
	}
	if p50 := d.P50(); p50 < 45 || p50 > 55 {
		t.Errorf("P50() = %v, want ~50", p50)
	}
	if p95 := d.P95(); p95 < 90 || p95 > 100 {
		t.Errorf("P95() = %v, want ~95", p95)
	}
	if d.Max() != 100 {
		t.Errorf("Max() = %v, want 100", d.Max())
	}
}

func TestDistribution_Clamps(t *testing.T) {
	d := NewDistribution()
	d.Add(250)
	d.Add(-10)

	if d.Max() != 100 {
		t.Errorf("Max() = %v, want clamped 100", d.Max())
	}
}

func TestDistribution_Reset(t *testing.T) {
	d := NewDistribution()
	d.Add(80)
	d.Reset()
	if d.Count() != 0 || d.Max() != 0 {
		t.Error("Reset should discard all samples")
	}
}
