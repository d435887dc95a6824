package process

import (
	"log/slog"
	"time"

	"github.com/wxlog/wxlog/internal/logging"
	"github.com/wxlog/wxlog/internal/store"
	"github.com/wxlog/wxlog/internal/timeutil"
)

// DayAcc accumulates one meteorological day: extremes and averages of the
// measured quantities from calibrated readings, plus wind average and rain
// total from the hourly summaries.
//
// Daytime is assumed to be 0900-2100 and nighttime 2100-0900 local
// standard time, regardless of the configured day-end hour: daytime
// samples feed the temperature maxima, nighttime samples the minima.
type DayAcc struct {
	log    *slog.Logger
	bucket *timeutil.Bucketer

	wind *WindFilter
	gust Maximum
	rain float64

	ave map[string]*Average
	min map[string]*Minimum
	max map[string]*Maximum

	hasIlluminance bool
	lastHourly     time.Time
	seenHourly     bool
}

// dayQuantities are averaged and tracked for min/max from raw data.
var dayQuantities = []string{
	store.FieldTempIn, store.FieldTempOut,
	store.FieldHumIn, store.FieldHumOut,
	store.FieldAbsPressure, store.FieldRelPressure,
}

// sunQuantities are optional; only stations with a solar sensor report
// them, and only maxima are meaningful.
var sunQuantities = []string{store.FieldIlluminance, store.FieldUV}

// NewDayAcc creates a daily accumulator using the given bucketer's local
// clock for the daytime/nighttime split.
func NewDayAcc(bucket *timeutil.Bucketer) *DayAcc {
	acc := &DayAcc{
		log:    logging.Component("process.day"),
		bucket: bucket,
	}
	acc.Reset()
	return acc
}

// Reset clears all state for a new day bucket.
func (a *DayAcc) Reset() {
	a.wind = NewWindFilter()
	a.gust = Maximum{}
	a.rain = 0.0
	a.ave = make(map[string]*Average)
	a.min = make(map[string]*Minimum)
	a.max = make(map[string]*Maximum)
	for _, q := range dayQuantities {
		a.ave[q] = &Average{}
		a.min[q] = &Minimum{}
		a.max[q] = &Maximum{}
	}
	for _, q := range sunQuantities {
		a.ave[q] = &Average{}
		a.max[q] = &Maximum{}
	}
	a.hasIlluminance = false
	a.lastHourly = time.Time{}
	a.seenHourly = false
}

// AddRaw folds one calibrated reading into the day's extremes and averages.
func (a *DayAcc) AddRaw(data *store.Reading) {
	idx := data.Index
	localHour := a.bucket.LocalHour(idx)
	if gust, ok := data.Float64(store.FieldWindGust); ok {
		a.gust.Add(gust, idx)
	}
	for _, q := range []string{store.FieldTempIn, store.FieldTempOut} {
		if temp, ok := data.Float64(q); ok {
			a.ave[q].Add(temp)
			if localHour >= 9 && localHour < 21 {
				// daytime max temperature
				a.max[q].Add(temp, idx)
			} else {
				// nighttime min temperature
				a.min[q].Add(temp, idx)
			}
		}
	}
	for _, q := range []string{store.FieldHumIn, store.FieldHumOut, store.FieldAbsPressure, store.FieldRelPressure} {
		if v, ok := data.Float64(q); ok {
			a.ave[q].Add(v)
			a.min[q].Add(v, idx)
			a.max[q].Add(v, idx)
		}
	}
	if data.Has(store.FieldIlluminance) || data.Has(store.FieldUV) {
		a.hasIlluminance = true
		for _, q := range sunQuantities {
			if v, ok := data.Float64(q); ok {
				a.ave[q].Add(v)
				a.max[q].Add(v, idx)
			}
		}
	}
}

// AddHourly folds one hourly summary into the day's wind average and rain
// total. The day's index becomes the index of its last hourly record.
func (a *DayAcc) AddHourly(data *store.Reading) {
	a.wind.AddReading(data)
	if rain, ok := data.Float64(store.FieldRain); ok {
		a.rain += rain
	}
	a.lastHourly = data.Index
	a.seenHourly = true
}

// Result returns the daily summary, or nil if the bucket saw no hourly
// records. start is the bucket's window start, recorded on the record.
func (a *DayAcc) Result(start time.Time) *store.Reading {
	if !a.seenHourly {
		return nil
	}
	out := store.NewReading(a.lastHourly)
	out.Set(store.FieldStart, store.Time(start))
	if speed, dir, ok := a.wind.Result(); ok {
		out.Set(store.FieldWindAve, store.Float(speed))
		out.Set(store.FieldWindDir, store.Float(dir))
	}
	if gust, at, ok := a.gust.Result(); ok {
		out.Set(store.FieldWindGust, store.Float(gust))
		out.Set(store.FieldWindGustT, store.Time(at))
	}
	out.Set(store.FieldRain, store.Float(a.rain))
	for _, q := range dayQuantities {
		if v, ok := a.ave[q].Result(); ok {
			out.Set(q+"_ave", store.Float(v))
		}
		if v, at, ok := a.min[q].Result(); ok {
			out.Set(q+"_min", store.Float(v))
			out.Set(q+"_min_t", store.Time(at))
		}
		if v, at, ok := a.max[q].Result(); ok {
			out.Set(q+"_max", store.Float(v))
			out.Set(q+"_max_t", store.Time(at))
		}
	}
	if a.hasIlluminance {
		for _, q := range sunQuantities {
			if v, ok := a.ave[q].Result(); ok {
				out.Set(q+"_ave", store.Float(v))
			}
			if v, at, ok := a.max[q].Result(); ok {
				out.Set(q+"_max", store.Float(v))
				out.Set(q+"_max_t", store.Time(at))
			}
		}
	}
	return out
}
