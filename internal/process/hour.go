package process

import (
	"log/slog"
	"time"

	"github.com/wxlog/wxlog/internal/logging"
	"github.com/wxlog/wxlog/internal/store"
)

// hourCopyFields are the "current reading" snapshot fields an hourly
// summary carries forward from the raw data.
var hourCopyFields = []string{
	store.FieldHumIn, store.FieldTempIn,
	store.FieldHumOut, store.FieldTempOut,
	store.FieldAbsPressure, store.FieldRelPressure,
	store.FieldIlluminance, store.FieldUV,
}

// HourAcc accumulates calibrated readings into one hourly summary: average
// wind speed, dominant wind direction, maximum gust and total rainfall.
//
// The rain counter is cumulative on the station and occasionally resets or
// glitches; both anomalies are recovered locally (logged, excluded from
// the bucket total) and never propagate.
type HourAcc struct {
	log *slog.Logger

	// lastRain persists across buckets: the delta of the first sample of
	// an hour is relative to the last sample of the previous one.
	lastRain    *float64
	spikeFactor float64

	wind     *WindFilter
	gust     Maximum
	rain     float64
	snapshot *store.Reading
	snapTemp bool // snapshot came from a sample with outdoor temperature
}

// NewHourAcc creates an hourly accumulator. lastRain is the most recent
// valid rain counter value seen before this bucket, or nil if none.
// spikeFactor is the rain plausibility threshold in mm per delay-minute.
func NewHourAcc(lastRain *float64, spikeFactor float64) *HourAcc {
	acc := &HourAcc{
		log:         logging.Component("process.hour"),
		lastRain:    lastRain,
		spikeFactor: spikeFactor,
	}
	acc.Reset()
	return acc
}

// Reset clears per-bucket state for a new hour. The rain counter memory is
// deliberately kept.
func (a *HourAcc) Reset() {
	a.wind = NewWindFilter()
	a.gust = Maximum{}
	a.rain = 0.0
	a.snapshot = nil
	a.snapTemp = false
}

// LastRain returns the most recent valid rain counter value, or nil.
func (a *HourAcc) LastRain() *float64 { return a.lastRain }

// AddRaw folds one calibrated reading into the bucket.
func (a *HourAcc) AddRaw(data *store.Reading) {
	idx := data.Index
	a.wind.AddReading(data)
	if gust, ok := data.Float64(store.FieldWindGust); ok {
		a.gust.Add(gust, idx)
	}
	if rain, ok := data.Float64(store.FieldRain); ok {
		if a.lastRain != nil {
			diff := rain - *a.lastRain
			delay, hasDelay := data.Int64(store.FieldDelay)
			if !hasDelay || delay <= 0 {
				// Without a sample interval the spike threshold is
				// meaningless; accept the delta rather than discard it.
				a.log.Warn("missing delay, rain spike check skipped", "index", idx)
			}
			switch {
			case diff < -0.001:
				// Counter reset: skip the delta, keep counting from here.
				a.log.Warn("rain reset",
					"index", idx, "last", *a.lastRain, "rain", rain)
			case hasDelay && delay > 0 && diff > a.spikeFactor*float64(delay):
				// Rain exceeding spikeFactor mm/minute is assumed to be
				// corrupt data and ignored.
				a.log.Warn("rain jump",
					"index", idx, "last", *a.lastRain, "rain", rain)
			default:
				if diff > 0 {
					a.rain += diff
				}
			}
		}
		r := rain
		a.lastRain = &r
	}
	// Snapshot fields come from the most recent sample with a live outdoor
	// temperature, so a 'lost contact' dropout near the end of the hour
	// cannot blank them. Until one qualifies, the very first sample stands.
	if data.Has(store.FieldTempOut) {
		a.snapshot = data
		a.snapTemp = true
	} else if a.snapshot == nil {
		a.snapshot = data
	}
}

// Result returns the hourly summary, or nil if no sample qualified for the
// snapshot. Pressure trend is filled in by the pipeline, which owns the
// multi-hour pressure history.
func (a *HourAcc) Result() *store.Reading {
	if a.snapshot == nil {
		return nil
	}
	out := store.NewReading(a.snapshot.Index)
	out.CopyFields(a.snapshot, hourCopyFields...)
	if speed, dir, ok := a.wind.Result(); ok {
		out.Set(store.FieldWindAve, store.Float(speed))
		out.Set(store.FieldWindDir, store.Float(dir))
	}
	if gust, _, ok := a.gust.Result(); ok {
		out.Set(store.FieldWindGust, store.Float(gust))
	}
	out.Set(store.FieldRain, store.Float(a.rain))
	return out
}

// GustTime returns the timestamp of the bucket's maximum gust, if any.
func (a *HourAcc) GustTime() (time.Time, bool) {
	_, at, ok := a.gust.Result()
	return at, ok
}
