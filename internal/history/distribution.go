package history

import "github.com/influxdata/tdigest"

// Distribution accumulates the session-wide stress score distribution.
// Unlike Buffer it never evicts: it answers "how stressed was this session
// overall", not "what happened in the last minute". Percentiles come from a
// T-Digest so memory stays bounded over arbitrarily long sessions.
type Distribution struct {
	digest *tdigest.TDigest
	count  int64
	max    float64
}

// NewDistribution creates an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{
		digest: tdigest.NewWithCompression(100),
	}
}

// Add records one stress sample. Samples are clamped like Buffer values so
// the two views stay comparable.
func (d *Distribution) Add(value float64) {
	if value < minValue {
		value = minValue
	}
	if value > maxValue {
		value = maxValue
	}
	d.digest.Add(value, 1)
	d.count++
	if value > d.max {
		d.max = value
	}
}

// Count returns the number of samples recorded.
func (d *Distribution) Count() int64 {
	return d.count
}

// P50 returns the median stress score, or 0 before any sample.
func (d *Distribution) P50() float64 {
	if d.count == 0 {
		return 0
	}
	return d.digest.Quantile(0.5)
}

// P95 returns the 95th percentile stress score, or 0 before any sample.
func (d *Distribution) P95() float64 {
	if d.count == 0 {
		return 0
	}
	return d.digest.Quantile(0.95)
}

// Max returns the highest stress score seen this session.
func (d *Distribution) Max() float64 {
	return d.max
}

// Reset discards all samples. Called on session teardown.
func (d *Distribution) Reset() {
	d.digest = tdigest.NewWithCompression(100)
	d.count = 0
	d.max = 0
}
