// Package process generates hourly, daily and monthly summaries of raw
// weather station data.
//
// Raw data (typically sampled every five or ten minutes) is first
// calibrated by a pluggable transform, then folded into hourly, daily and
// monthly summary stores. Every stage computes its own resume point,
// deletes its store from there forward and regenerates, which makes a full
// run idempotent: reprocessing from any consistent upstream state
// converges to the same downstream content.
package process

import (
	"log/slog"
	"time"

	wxconfig "github.com/wxlog/wxlog/config"
	"github.com/wxlog/wxlog/internal/calib"
	"github.com/wxlog/wxlog/internal/errors"
	"github.com/wxlog/wxlog/internal/logging"
	"github.com/wxlog/wxlog/internal/store"
	"github.com/wxlog/wxlog/internal/timeutil"
)

// Options control bucket boundaries and the device-interval-dependent
// heuristics. The defaults were tuned against a ~5-minute native sampling
// interval; stations sampling at other rates should adjust them.
type Options struct {
	// Location is the station's time zone. Nil means UTC.
	Location *time.Location

	// DayEndHour is the local hour delimiting daily and monthly buckets.
	DayEndHour int

	// DSTAware recomputes the local offset at each bucket boundary
	// instead of caching the standard offset.
	DSTAware bool

	// RainDayThreshold is the daily rain total (mm) from which a day
	// counts as a rain day.
	RainDayThreshold float64

	// RainSpikeFactor is the implausibility threshold for rain counter
	// jumps, in mm per delay-minute.
	RainSpikeFactor float64

	// GateMinute is the completeness gate: an hourly bucket is stored
	// only if its last contributing sample's minute-of-hour is >= this.
	GateMinute int

	// IntervalTolerance is the slack allowed between the observed sample
	// spacing and the reading's declared delay before a warning is logged.
	IntervalTolerance time.Duration

	// TrendWindow and TrendTolerance control the pressure trend: trend is
	// the current pressure minus the history sample closest to
	// now-TrendWindow, reported only if that sample lies within
	// TrendTolerance of the exact target.
	TrendWindow    time.Duration
	TrendTolerance time.Duration
}

// DefaultOptions returns Options with the documented defaults.
func DefaultOptions() Options {
	return Options{
		Location:          time.UTC,
		DayEndHour:        wxconfig.DefaultDayEndHour,
		RainDayThreshold:  wxconfig.DefaultRainDayThreshold,
		RainSpikeFactor:   wxconfig.DefaultRainSpikeFactor,
		GateMinute:        wxconfig.DefaultGateMinute,
		IntervalTolerance: wxconfig.DefaultIntervalTolerance,
		TrendWindow:       wxconfig.DefaultTrendWindow,
		TrendTolerance:    wxconfig.DefaultTrendTolerance,
	}
}

// Stores bundles the five store kinds the pipeline reads and writes.
type Stores struct {
	Raw     *store.TimeStore
	Calib   *store.TimeStore
	Hourly  *store.TimeStore
	Daily   *store.TimeStore
	Monthly *store.TimeStore
}

// Pipeline runs the calibrate -> hourly -> daily -> monthly stages.
type Pipeline struct {
	log        *slog.Logger
	opts       Options
	bucket     *timeutil.Bucketer
	calibrator calib.Calibrator
	stores     Stores
}

// New creates a pipeline over the given stores.
func New(calibrator calib.Calibrator, stores Stores, opts Options) *Pipeline {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Pipeline{
		log:        logging.Component("process"),
		opts:       opts,
		bucket:     timeutil.NewBucketer(opts.Location, opts.DayEndHour, opts.DSTAware),
		calibrator: calibrator,
		stores:     stores,
	}
}

// Run executes all stages in order and flushes every store. An empty raw
// store is fatal: there is nothing to summarize and the data directory is
// probably wrong.
func (p *Pipeline) Run() error {
	p.log.Info("generating summary data")
	if _, ok, err := p.stores.Raw.Before(store.MaxTime); err != nil {
		return err
	} else if !ok {
		return errors.Wrap(errors.ErrNoData, "raw store is empty, check the data directory")
	}
	start, err := p.calibrate()
	if err != nil {
		return errors.Wrap(err, "calibrate")
	}
	start, err = p.generateHourly(start)
	if err != nil {
		return errors.Wrap(err, "hourly")
	}
	start, err = p.generateDaily(start)
	if err != nil {
		return errors.Wrap(err, "daily")
	}
	if _, err = p.generateMonthly(start); err != nil {
		return errors.Wrap(err, "monthly")
	}
	for _, s := range []*store.TimeStore{
		p.stores.Calib, p.stores.Hourly, p.stores.Daily, p.stores.Monthly,
	} {
		if err := s.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// resumePoint finds where a stage must restart: one second past the
// stage's own latest record, advanced to the next available upstream
// record. An empty downstream store resumes at the earliest upstream
// record. ok is false when the upstream has nothing new.
func resumePoint(own, upstream *store.TimeStore) (time.Time, bool, error) {
	start := store.MinTime
	if last, ok, err := own.Before(store.MaxTime); err != nil {
		return time.Time{}, false, err
	} else if ok {
		start = last.Add(time.Second)
	}
	return upstream.After(start)
}

// mergeFrom folds the previous stage's resume point in: a stage never
// starts later than the data its upstream regenerated.
func mergeFrom(start time.Time, ok bool, processFrom time.Time, fromOK bool) (time.Time, bool) {
	if !fromOK {
		return start, ok
	}
	if !ok || processFrom.Before(start) {
		return processFrom, true
	}
	return start, true
}

// calibrate regenerates the calibrated store from the raw store. Records
// missing any of the fields every later stage depends on are dropped with
// an error log; the stage carries on.
func (p *Pipeline) calibrate() (time.Time, error) {
	start, ok, err := resumePoint(p.stores.Calib, p.stores.Raw)
	if err != nil || !ok {
		return time.Time{}, err
	}
	if err := p.stores.Calib.DeleteRange(start, store.MaxTime); err != nil {
		return time.Time{}, err
	}
	cur := p.stores.Raw.Range(start, store.MaxTime)
	count := 0
	for {
		data, err := cur.Next()
		if err != nil {
			return time.Time{}, err
		}
		if data == nil {
			break
		}
		count++
		if count%10000 == 0 {
			p.log.Info("calib", "index", data.Index)
		} else if count%500 == 0 {
			p.log.Debug("calib", "index", data.Index)
		}
		if !data.Has(store.FieldRain) ||
			!data.Has(store.FieldAbsPressure) ||
			!data.Has(store.FieldTempIn) {
			p.log.Error("ignoring invalid data", "index", data.Index)
			continue
		}
		if err := p.stores.Calib.Set(data.Index, p.calibrator.Calibrate(data)); err != nil {
			return time.Time{}, err
		}
	}
	return start, nil
}

// pressureSample is one entry of the sliding pressure history.
type pressureSample struct {
	at       time.Time
	pressure float64
}

// generateHourly regenerates hourly summaries from calibrated data.
func (p *Pipeline) generateHourly(processFrom time.Time) (time.Time, error) {
	start, ok, err := resumePoint(p.stores.Hourly, p.stores.Calib)
	if err != nil {
		return time.Time{}, err
	}
	start, ok = mergeFrom(start, ok, processFrom, !processFrom.IsZero())
	if !ok {
		return time.Time{}, nil
	}
	start = p.bucket.HourStart(start)
	if err := p.stores.Hourly.DeleteRange(start, store.MaxTime); err != nil {
		return time.Time{}, err
	}

	// Preload the pressure history and find the last valid rain counter
	// value before the resume point.
	var (
		prev     *store.Reading
		history  []pressureSample
		lastRain *float64
	)
	preCur := p.stores.Calib.Range(start.Add(-p.opts.TrendWindow), start)
	for {
		data, err := preCur.Next()
		if err != nil {
			return time.Time{}, err
		}
		if data == nil {
			break
		}
		if rel, ok := data.Float64(store.FieldRelPressure); ok {
			history = append(history, pressureSample{data.Index, rel})
		}
		if rain, ok := data.Float64(store.FieldRain); ok {
			r := rain
			lastRain = &r
		}
		prev = data
	}

	stop, ok, err := p.stores.Calib.Before(store.MaxTime)
	if err != nil || !ok {
		return time.Time{}, err
	}
	acc := NewHourAcc(lastRain, p.opts.RainSpikeFactor)
	hourStart := start
	count := 0
	for !hourStart.After(stop) {
		count++
		if count%1008 == 0 {
			p.log.Info("hourly", "start", hourStart)
		} else if count%24 == 0 {
			p.log.Debug("hourly", "start", hourStart)
		}
		hourEnd := p.bucket.NextHour(hourStart)
		acc.Reset()
		cur := p.stores.Calib.Range(hourStart, hourEnd)
		for {
			data, err := cur.Next()
			if err != nil {
				return time.Time{}, err
			}
			if data == nil {
				break
			}
			if rel, ok := data.Float64(store.FieldRelPressure); ok {
				history = append(history, pressureSample{data.Index, rel})
			}
			if prev != nil {
				gap := data.Index.Sub(prev.Index)
				delay, _ := data.Int64(store.FieldDelay)
				want := time.Duration(delay) * time.Minute
				if absDuration(gap-want) > p.opts.IntervalTolerance {
					p.log.Info("unexpected data interval",
						"index", data.Index, "interval", gap)
				}
			}
			acc.AddRaw(data)
			prev = data
		}
		if newData := acc.Result(); newData != nil && newData.Index.Minute() >= p.opts.GateMinute {
			history = p.applyPressureTrend(newData, history)
			if err := p.stores.Hourly.Set(newData.Index, newData); err != nil {
				return time.Time{}, err
			}
		}
		hourStart = hourEnd
	}
	return start, nil
}

// applyPressureTrend sets the record's pressure trend from the sliding
// history: the difference between the current pressure and the history
// sample closest to TrendWindow ago, if that sample is near enough to the
// exact target. Consumed history entries are discarded.
func (p *Pipeline) applyPressureTrend(newData *store.Reading, history []pressureSample) []pressureSample {
	rel, ok := newData.Float64(store.FieldRelPressure)
	if !ok {
		return history
	}
	target := newData.Index.Add(-p.opts.TrendWindow)
	for len(history) >= 2 &&
		absDuration(history[0].at.Sub(target)) > absDuration(history[1].at.Sub(target)) {
		history = history[1:]
	}
	if len(history) > 0 && absDuration(history[0].at.Sub(target)) < p.opts.TrendTolerance {
		newData.Set(store.FieldPressureTrend, store.Float(rel-history[0].pressure))
	}
	return history
}

// generateDaily regenerates daily summaries from calibrated and hourly data.
func (p *Pipeline) generateDaily(processFrom time.Time) (time.Time, error) {
	start, ok, err := resumePoint(p.stores.Daily, p.stores.Calib)
	if err != nil {
		return time.Time{}, err
	}
	start, ok = mergeFrom(start, ok, processFrom, !processFrom.IsZero())
	if !ok {
		return time.Time{}, nil
	}
	start = p.bucket.DayStart(start)
	if err := p.stores.Daily.DeleteRange(start, store.MaxTime); err != nil {
		return time.Time{}, err
	}
	stop, ok, err := p.stores.Calib.Before(store.MaxTime)
	if err != nil || !ok {
		return time.Time{}, err
	}
	acc := NewDayAcc(p.bucket)
	dayStart := start
	count := 0
	for !dayStart.After(stop) {
		count++
		if count%30 == 0 {
			p.log.Info("daily", "start", dayStart)
		} else {
			p.log.Debug("daily", "start", dayStart)
		}
		dayEnd := p.bucket.NextDay(dayStart)
		acc.Reset()
		rawCur := p.stores.Calib.Range(dayStart, dayEnd)
		for {
			data, err := rawCur.Next()
			if err != nil {
				return time.Time{}, err
			}
			if data == nil {
				break
			}
			acc.AddRaw(data)
		}
		hourCur := p.stores.Hourly.Range(dayStart, dayEnd)
		for {
			data, err := hourCur.Next()
			if err != nil {
				return time.Time{}, err
			}
			if data == nil {
				break
			}
			acc.AddHourly(data)
		}
		if newData := acc.Result(dayStart); newData != nil {
			if err := p.stores.Daily.Set(newData.Index, newData); err != nil {
				return time.Time{}, err
			}
		}
		dayStart = dayEnd
	}
	return start, nil
}

// generateMonthly regenerates monthly summaries from daily data only.
func (p *Pipeline) generateMonthly(processFrom time.Time) (time.Time, error) {
	start, ok, err := resumePoint(p.stores.Monthly, p.stores.Daily)
	if err != nil {
		return time.Time{}, err
	}
	start, ok = mergeFrom(start, ok, processFrom, !processFrom.IsZero())
	if !ok {
		return time.Time{}, nil
	}
	start = p.bucket.MonthStart(start)
	if err := p.stores.Monthly.DeleteRange(start, store.MaxTime); err != nil {
		return time.Time{}, err
	}
	stop, ok, err := p.stores.Daily.Before(store.MaxTime)
	if err != nil || !ok {
		return time.Time{}, err
	}
	acc := NewMonthAcc(p.opts.RainDayThreshold)
	monthStart := start
	count := 0
	for !monthStart.After(stop) {
		count++
		if count%12 == 0 {
			p.log.Info("monthly", "start", monthStart)
		} else {
			p.log.Debug("monthly", "start", monthStart)
		}
		monthEnd := p.bucket.NextMonth(monthStart)
		acc.Reset()
		cur := p.stores.Daily.Range(monthStart, monthEnd)
		for {
			data, err := cur.Next()
			if err != nil {
				return time.Time{}, err
			}
			if data == nil {
				break
			}
			acc.AddDaily(data)
		}
		if newData := acc.Result(monthStart); newData != nil {
			if err := p.stores.Monthly.Set(newData.Index, newData); err != nil {
				return time.Time{}, err
			}
		}
		monthStart = monthEnd
	}
	return start, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
