// Package timeutil derives local-calendar bucket boundaries from UTC
// timestamps.
//
// All stored data is indexed in UTC, to avoid daylight savings ambiguity.
// Summary buckets, however, follow the local calendar: an hourly bucket is
// a local clock hour, and daily/monthly buckets are delimited by a
// configured "day end hour" in local time. Two modes are supported: the
// default uses the zone's fixed standard offset, and a DST-aware mode
// recomputes the offset at each boundary crossing, so a local day may span
// 23 or 25 UTC hours.
package timeutil

import "time"

// Bucketer computes hour, day and month windows for the rollup pipeline.
type Bucketer struct {
	loc        *time.Location
	stdOffset  time.Duration
	dayEndHour int
	dstAware   bool
}

// NewBucketer creates a Bucketer for the given zone and day-end hour.
// dayEndHour is taken modulo 24.
func NewBucketer(loc *time.Location, dayEndHour int, dstAware bool) *Bucketer {
	if loc == nil {
		loc = time.UTC
	}
	return &Bucketer{
		loc:        loc,
		stdOffset:  StandardOffset(loc),
		dayEndHour: ((dayEndHour % 24) + 24) % 24,
		dstAware:   dstAware,
	}
}

// StandardOffset returns the zone's offset outside daylight savings. DST
// never lowers the offset, so the smaller of the midsummer and midwinter
// offsets is the standard one.
func StandardOffset(loc *time.Location) time.Duration {
	jan := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC).In(loc)
	jul := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC).In(loc)
	_, offJan := jan.Zone()
	_, offJul := jul.Zone()
	off := offJan
	if offJul < off {
		off = offJul
	}
	return time.Duration(off) * time.Second
}

// offsetAt returns the local offset used for the boundary containing t.
func (b *Bucketer) offsetAt(t time.Time) time.Duration {
	if !b.dstAware {
		return b.stdOffset
	}
	_, off := t.In(b.loc).Zone()
	return time.Duration(off) * time.Second
}

// LocalHour returns t's hour of day at the standard offset. The 9am/9pm
// daytime/nighttime split for temperature extremes uses this fixed offset
// regardless of the day-end hour and of DST mode.
func (b *Bucketer) LocalHour(t time.Time) int {
	return t.Add(b.stdOffset).UTC().Hour()
}

// HourStart truncates t to the start of its local clock hour. Not all time
// offsets are integer hours, so the truncation happens in local time.
func (b *Bucketer) HourStart(t time.Time) time.Time {
	lt := t.Add(b.stdOffset).UTC()
	lt = time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), 0, 0, 0, time.UTC)
	return lt.Add(-b.stdOffset)
}

// NextHour returns the start of the hour window after start.
func (b *Bucketer) NextHour(start time.Time) time.Time {
	return start.Add(time.Hour)
}

// DayStart returns the start of the local meteorological day containing t:
// the most recent day-end-hour boundary at or before t.
func (b *Bucketer) DayStart(t time.Time) time.Time {
	off := b.offsetAt(t)
	lt := t.Add(off).UTC()
	if lt.Hour() < b.dayEndHour {
		lt = lt.AddDate(0, 0, -1)
	}
	lt = time.Date(lt.Year(), lt.Month(), lt.Day(), b.dayEndHour, 0, 0, 0, time.UTC)
	return b.resolve(lt)
}

// NextDay returns the start of the day window after start. In DST-aware
// mode the offset is recomputed at the new boundary, never cached, so days
// crossing a DST change are 23 or 25 UTC hours long.
func (b *Bucketer) NextDay(start time.Time) time.Time {
	lt := start.Add(b.offsetAt(start)).UTC().AddDate(0, 0, 1)
	lt = time.Date(lt.Year(), lt.Month(), lt.Day(), b.dayEndHour, 0, 0, 0, time.UTC)
	return b.resolve(lt)
}

// MonthStart returns the start of the local month containing t. When the
// day-end hour is 12 or later, the month starts on the last day of the
// previous calendar month, following the day-end convention.
func (b *Bucketer) MonthStart(t time.Time) time.Time {
	off := b.offsetAt(t)
	lt := t.Add(off).UTC()
	lt = time.Date(lt.Year(), lt.Month(), 1, b.dayEndHour, 0, 0, 0, time.UTC)
	if b.dayEndHour >= 12 {
		lt = lt.AddDate(0, 0, -1)
	}
	return b.resolve(lt)
}

// NextMonth returns the start of the month window after start.
func (b *Bucketer) NextMonth(start time.Time) time.Time {
	// Step a week into the window to land inside its calendar month even
	// when the window began on the last day of the previous one.
	lt := start.Add(b.offsetAt(start)).UTC().AddDate(0, 0, 7)
	first := time.Date(lt.Year(), lt.Month(), 1, b.dayEndHour, 0, 0, 0, time.UTC)
	first = first.AddDate(0, 1, 0)
	if b.dayEndHour >= 12 {
		first = first.AddDate(0, 0, -1)
	}
	return b.resolve(first)
}

// resolve converts a local wall-clock time (expressed in UTC fields) back
// to the UTC instant, using the offset in effect at that local time.
func (b *Bucketer) resolve(local time.Time) time.Time {
	if !b.dstAware {
		return local.Add(-b.stdOffset)
	}
	// First approximation with the standard offset, then correct once with
	// the offset actually in effect there. A time inside a DST gap resolves
	// to the post-transition side.
	approx := local.Add(-b.stdOffset)
	_, off := approx.In(b.loc).Zone()
	return local.Add(-time.Duration(off) * time.Second)
}
