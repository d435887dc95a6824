package process

import (
	"math"
	"time"

	"github.com/wxlog/wxlog/internal/store"
)

// referenceInterval is the native sampling spacing the decay rate is
// normalized to. Samples at other spacings have their weight scaled so the
// filter behaves consistently with unevenly spaced data.
const referenceInterval = 5 * time.Minute

// WindFilter computes average wind speed and direction.
//
// The speed and direction of each sample is converted to a vector before
// averaging, so the result reflects the dominant wind direction over the
// period without the wraparound discontinuity of averaging raw compass
// numbers. Directions are accepted either as a 16-point compass index or
// as a fractional compass value in sixteenths (22.5 degree steps).
//
// A decay below 1.0 turns the filter into an approximation of exponential
// smoothing: the newest sample carries the highest weight, and earlier
// samples decay according to how long ago they were, with decay expressed
// per 5-minute reference interval.
type WindFilter struct {
	decay       float64
	ve, vn      float64
	total       float64
	weight      float64
	totalWeight float64
	lastIdx     time.Time
}

// NewWindFilter creates a simple (un-decayed) averaging filter.
func NewWindFilter() *WindFilter {
	return NewWindFilterDecay(1.0)
}

// NewWindFilterDecay creates a filter with the given decay per 5 minutes.
func NewWindFilterDecay(decay float64) *WindFilter {
	return &WindFilter{decay: decay, weight: 1.0}
}

// AddReading folds a reading's wind_ave/wind_dir pair into the filter.
// Readings missing either field contribute nothing.
func (f *WindFilter) AddReading(r *store.Reading) {
	speed, ok := r.Float64(store.FieldWindAve)
	if !ok {
		return
	}
	dir, ok := r.Float64(store.FieldWindDir)
	if !ok {
		return
	}
	f.Add(r.Index, speed, dir)
}

// Add folds one sample. dir is in sixteenths of a circle (0 = north,
// 4 = east); integer compass indices are simply whole sixteenths.
func (f *WindFilter) Add(idx time.Time, speed, dir float64) {
	if !f.lastIdx.IsZero() && f.decay != 1.0 {
		interval := idx.Sub(f.lastIdx)
		decay := f.decay
		if interval != referenceInterval {
			decay = math.Pow(decay, interval.Seconds()/referenceInterval.Seconds())
		}
		f.weight = f.weight / decay
	}
	f.lastIdx = idx
	speed = speed * f.weight
	rad := dir * 22.5 * math.Pi / 180.0
	f.ve -= speed * math.Sin(rad)
	f.vn -= speed * math.Cos(rad)
	f.total += speed
	f.totalWeight += f.weight
}

// AddDegrees folds one sample whose direction is in degrees.
func (f *WindFilter) AddDegrees(idx time.Time, speed, degrees float64) {
	f.Add(idx, speed, degrees/22.5)
}

// Magnitude returns the length of the mean resultant vector. Opposing
// winds of equal speed cancel to a magnitude near zero even though the
// mean scalar speed does not.
func (f *WindFilter) Magnitude() float64 {
	if f.totalWeight == 0.0 {
		return 0
	}
	return math.Hypot(f.ve, f.vn) / f.totalWeight
}

// Result returns the weighted mean speed and the direction of the
// resultant vector in sixteenths. ok is false when no samples were added.
func (f *WindFilter) Result() (speed, dir float64, ok bool) {
	if f.totalWeight == 0.0 {
		return 0, 0, false
	}
	dir = (math.Atan2(f.ve, f.vn)*180.0/math.Pi + 180.0) / 22.5
	return f.total / f.totalWeight, dir, true
}
