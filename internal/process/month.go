package process

import (
	"time"

	"github.com/wxlog/wxlog/internal/store"
)

// MonthAcc accumulates daily summaries into one monthly summary. It never
// consumes raw data.
//
// Temperatures get four extremes each: the lowest and highest of the daily
// minima, and the lowest and highest of the daily maxima, all carrying the
// timestamp of the day record they came from, plus averages of the minima
// and maxima. Other quantities keep plain min/max/average. Rain totals,
// and days with rain at or above the threshold are counted.
type MonthAcc struct {
	rainDayThreshold float64

	wind *WindFilter
	gust Maximum

	ave    map[string]*Average
	min    map[string]*Minimum
	max    map[string]*Maximum
	minLo  map[string]*Minimum
	minHi  map[string]*Maximum
	minAve map[string]*Average
	maxLo  map[string]*Minimum
	maxHi  map[string]*Maximum
	maxAve map[string]*Average

	rain           float64
	rainDays       int64
	idx            time.Time
	valid          bool
	hasIlluminance bool
}

// monthTempQuantities carry four extremes.
var monthTempQuantities = []string{store.FieldTempOut, store.FieldTempIn}

// monthPlainQuantities carry plain min/max/average.
var monthPlainQuantities = []string{
	store.FieldHumOut, store.FieldHumIn,
	store.FieldAbsPressure, store.FieldRelPressure,
}

// NewMonthAcc creates a monthly accumulator. A day counts as a rain day
// when its rain total meets or exceeds rainDayThreshold.
func NewMonthAcc(rainDayThreshold float64) *MonthAcc {
	acc := &MonthAcc{rainDayThreshold: rainDayThreshold}
	acc.Reset()
	return acc
}

// Reset clears all state for a new month bucket.
func (a *MonthAcc) Reset() {
	a.wind = NewWindFilter()
	a.gust = Maximum{}
	a.ave = make(map[string]*Average)
	a.min = make(map[string]*Minimum)
	a.max = make(map[string]*Maximum)
	a.minLo = make(map[string]*Minimum)
	a.minHi = make(map[string]*Maximum)
	a.minAve = make(map[string]*Average)
	a.maxLo = make(map[string]*Minimum)
	a.maxHi = make(map[string]*Maximum)
	a.maxAve = make(map[string]*Average)
	for _, q := range monthTempQuantities {
		a.ave[q] = &Average{}
		a.minLo[q] = &Minimum{}
		a.minHi[q] = &Maximum{}
		a.minAve[q] = &Average{}
		a.maxLo[q] = &Minimum{}
		a.maxHi[q] = &Maximum{}
		a.maxAve[q] = &Average{}
	}
	for _, q := range monthPlainQuantities {
		a.ave[q] = &Average{}
		a.min[q] = &Minimum{}
		a.max[q] = &Maximum{}
	}
	for _, q := range sunQuantities {
		a.ave[q] = &Average{}
		a.maxLo[q] = &Minimum{}
		a.maxHi[q] = &Maximum{}
		a.maxAve[q] = &Average{}
	}
	a.rain = 0.0
	a.rainDays = 0
	a.valid = false
	a.hasIlluminance = false
}

// AddDaily folds one daily summary into the month. The month's index
// becomes the index of its last daily record.
func (a *MonthAcc) AddDaily(data *store.Reading) {
	a.idx = data.Index
	for _, q := range monthTempQuantities {
		if v, ok := data.Float64(q + "_ave"); ok {
			a.ave[q].Add(v)
		}
		if v, ok := data.Float64(q + "_min"); ok {
			at, _ := data.Timestamp(q + "_min_t")
			a.minLo[q].Add(v, at)
			a.minHi[q].Add(v, at)
			a.minAve[q].Add(v)
		}
		if v, ok := data.Float64(q + "_max"); ok {
			at, _ := data.Timestamp(q + "_max_t")
			a.maxLo[q].Add(v, at)
			a.maxHi[q].Add(v, at)
			a.maxAve[q].Add(v)
		}
	}
	for _, q := range monthPlainQuantities {
		if v, ok := data.Float64(q + "_ave"); ok {
			a.ave[q].Add(v)
		}
		if v, ok := data.Float64(q + "_min"); ok {
			at, _ := data.Timestamp(q + "_min_t")
			a.min[q].Add(v, at)
		}
		if v, ok := data.Float64(q + "_max"); ok {
			at, _ := data.Timestamp(q + "_max_t")
			a.max[q].Add(v, at)
		}
	}
	a.wind.AddReading(data)
	if gust, ok := data.Float64(store.FieldWindGust); ok {
		at, _ := data.Timestamp(store.FieldWindGustT)
		a.gust.Add(gust, at)
	}
	if data.Has(store.FieldIlluminance + "_ave") {
		a.hasIlluminance = true
		for _, q := range sunQuantities {
			if v, ok := data.Float64(q + "_ave"); ok {
				a.ave[q].Add(v)
			}
			if v, ok := data.Float64(q + "_max"); ok {
				at, _ := data.Timestamp(q + "_max_t")
				a.maxLo[q].Add(v, at)
				a.maxHi[q].Add(v, at)
				a.maxAve[q].Add(v)
			}
		}
	}
	if rain, ok := data.Float64(store.FieldRain); ok {
		a.rain += rain
		if rain >= a.rainDayThreshold {
			a.rainDays++
		}
	}
	a.valid = true
}

// Result returns the monthly summary, or nil if no daily record was added.
// start is the bucket's window start, recorded on the record.
func (a *MonthAcc) Result(start time.Time) *store.Reading {
	if !a.valid {
		return nil
	}
	out := store.NewReading(a.idx)
	out.Set(store.FieldStart, store.Time(start))
	out.Set(store.FieldRain, store.Float(a.rain))
	out.Set(store.FieldRainDays, store.Int(a.rainDays))
	for _, q := range monthTempQuantities {
		if v, ok := a.ave[q].Result(); ok {
			out.Set(q+"_ave", store.Float(v))
		}
		if v, ok := a.minAve[q].Result(); ok {
			out.Set(q+"_min_ave", store.Float(v))
		}
		if v, at, ok := a.minLo[q].Result(); ok {
			out.Set(q+"_min_lo", store.Float(v))
			out.Set(q+"_min_lo_t", store.Time(at))
		}
		if v, at, ok := a.minHi[q].Result(); ok {
			out.Set(q+"_min_hi", store.Float(v))
			out.Set(q+"_min_hi_t", store.Time(at))
		}
		if v, ok := a.maxAve[q].Result(); ok {
			out.Set(q+"_max_ave", store.Float(v))
		}
		if v, at, ok := a.maxLo[q].Result(); ok {
			out.Set(q+"_max_lo", store.Float(v))
			out.Set(q+"_max_lo_t", store.Time(at))
		}
		if v, at, ok := a.maxHi[q].Result(); ok {
			out.Set(q+"_max_hi", store.Float(v))
			out.Set(q+"_max_hi_t", store.Time(at))
		}
	}
	for _, q := range monthPlainQuantities {
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
	if speed, dir, ok := a.wind.Result(); ok {
		out.Set(store.FieldWindAve, store.Float(speed))
		out.Set(store.FieldWindDir, store.Float(dir))
	}
	if gust, at, ok := a.gust.Result(); ok {
		out.Set(store.FieldWindGust, store.Float(gust))
		if !at.IsZero() {
			out.Set(store.FieldWindGustT, store.Time(at))
		}
	}
	if a.hasIlluminance {
		for _, q := range sunQuantities {
			if v, ok := a.ave[q].Result(); ok {
				out.Set(q+"_ave", store.Float(v))
			}
			if v, ok := a.maxAve[q].Result(); ok {
				out.Set(q+"_max_ave", store.Float(v))
			}
			if v, at, ok := a.maxLo[q].Result(); ok {
				out.Set(q+"_max_lo", store.Float(v))
				out.Set(q+"_max_lo_t", store.Time(at))
			}
			if v, at, ok := a.maxHi[q].Result(); ok {
				out.Set(q+"_max_hi", store.Float(v))
				out.Set(q+"_max_hi_t", store.Time(at))
			}
		}
	}
	return out
}
