// Package report computes distribution summaries of stored weather data.
// It maintains running statistics with optional quantiles from DDSketch,
// for climate-style reports like "median outdoor temperature last month".
package report

import (
	"math"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/wxlog/wxlog/internal/store"
)

// Distribution maintains running statistics for one field.
type Distribution struct {
	count   int64
	sum     float64
	min     float64
	max     float64
	firstTs time.Time
	lastTs  time.Time

	// DDSketch for quantiles (nil if unavailable)
	sketch *ddsketch.DDSketch
}

// NewDistribution creates a distribution with the given relative quantile
// accuracy (0.01 = 1% error).
func NewDistribution(accuracy float64) *Distribution {
	d := &Distribution{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
	sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err == nil {
		d.sketch = sketch
	}
	return d
}

// Add adds one value to the distribution.
func (d *Distribution) Add(value float64, at time.Time) {
	d.count++
	d.sum += value

	if value < d.min {
		d.min = value
	}
	if value > d.max {
		d.max = value
	}

	if d.firstTs.IsZero() || at.Before(d.firstTs) {
		d.firstTs = at
	}
	if at.After(d.lastTs) {
		d.lastTs = at
	}

	if d.sketch != nil {
		d.sketch.Add(value)
	}
}

// Count returns the number of values added.
func (d *Distribution) Count() int64 {
	return d.count
}

// Summary is the result of a distribution report.
type Summary struct {
	Field   string
	Count   int64
	Mean    float64
	Min     float64
	Max     float64
	FirstTs time.Time
	LastTs  time.Time

	// Quantiles, present only when the sketch is available and non-empty.
	P50 *float64
	P90 *float64
	P95 *float64
	P99 *float64
}

// Result returns the distribution summary. ok is false when the
// distribution is empty.
func (d *Distribution) Result(field string) (Summary, bool) {
	if d.count == 0 {
		return Summary{}, false
	}
	s := Summary{
		Field:   field,
		Count:   d.count,
		Mean:    d.sum / float64(d.count),
		Min:     d.min,
		Max:     d.max,
		FirstTs: d.firstTs,
		LastTs:  d.lastTs,
	}
	if d.sketch != nil && d.sketch.GetCount() > 0 {
		qs, err := d.sketch.GetValuesAtQuantiles([]float64{0.5, 0.9, 0.95, 0.99})
		if err == nil && len(qs) == 4 {
			s.P50, s.P90, s.P95, s.P99 = &qs[0], &qs[1], &qs[2], &qs[3]
		}
	}
	return s, true
}

// FieldSummary reports the distribution of one field of a store over
// [start, end). ok is false when the range holds no values for the field.
func FieldSummary(s *store.TimeStore, field string, start, end time.Time, accuracy float64) (Summary, bool, error) {
	d := NewDistribution(accuracy)
	cur := s.Range(start, end)
	for {
		data, err := cur.Next()
		if err != nil {
			return Summary{}, false, err
		}
		if data == nil {
			break
		}
		if v, ok := data.Float64(field); ok {
			d.Add(v, data.Index)
		}
	}
	sum, ok := d.Result(field)
	return sum, ok, nil
}
