// Package duration canonicalises user-supplied durations of ambiguous unit.
//
// The public options accept both human-friendly seconds (0.5, 3) and
// machine-friendly milliseconds (500, 3000) through the same field. Any value
// at or above the threshold is taken as milliseconds, anything below it as
// seconds.
//
// Normalisation is not idempotent. ToMilliseconds(ToMilliseconds(2)) is
// 2000, but ToMilliseconds(ToMilliseconds(0.005)) is 5000 rather than 5
// because the first pass yields 5, which is still below the threshold.
// Raw option values must be normalised exactly once.
package duration

import (
	"math"
	"time"
)

// DefaultThreshold is the boundary between seconds and milliseconds.
const DefaultThreshold = 10.0

// Normalizer converts ambiguous durations using a configurable threshold.
// The zero value uses DefaultThreshold.
type Normalizer struct {
	Threshold float64
}

func (n Normalizer) threshold() float64 {
	if n.Threshold <= 0 {
		return DefaultThreshold
	}
	return n.Threshold
}

// ToMilliseconds returns value expressed in milliseconds.
func (n Normalizer) ToMilliseconds(value float64) float64 {
	if value >= n.threshold() {
		return value
	}
	return value * 1000
}

// ToSeconds returns value expressed in seconds.
func (n Normalizer) ToSeconds(value float64) float64 {
	if value >= n.threshold() {
		return value / 1000
	}
	return value
}

// maxMilliseconds is the largest millisecond count a time.Duration holds.
const maxMilliseconds = math.MaxInt64 / int64(time.Millisecond)

// Duration returns value as a time.Duration. Negative values clamp to zero
// and values too large for a time.Duration, including +Inf, clamp to the
// largest whole number of milliseconds.
func (n Normalizer) Duration(value float64) time.Duration {
	ms := n.ToMilliseconds(value)
	if ms <= 0 || math.IsNaN(ms) {
		return 0
	}
	if ms >= float64(maxMilliseconds) {
		return time.Duration(maxMilliseconds) * time.Millisecond
	}
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

// ToMilliseconds normalises value with DefaultThreshold.
func ToMilliseconds(value float64) float64 {
	return Normalizer{}.ToMilliseconds(value)
}

// ToSeconds normalises value with DefaultThreshold.
func ToSeconds(value float64) float64 {
	return Normalizer{}.ToSeconds(value)
}
