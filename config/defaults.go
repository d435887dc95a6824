// Package config provides configuration defaults and utilities
// for the wxlog application.
//
// This package defines all configurable constants with documented defaults.
// The heuristic values (interval tolerance, spike factor, trend windows)
// were tuned against stations with a native sampling interval of about
// five minutes; stations logging at other rates should override them.
package config

import "time"

// =============================================================================
// Calendar Defaults
// =============================================================================

const (
	// DefaultDayEndHour is the local hour at which a meteorological day
	// ends. 21:00 local standard time is the conventional observation
	// cut-off, so "today's" rain total covers 21:00 yesterday to 21:00
	// today.
	// Override via config: calendar.day_end_hour
	DefaultDayEndHour = 21

	// DefaultTimezone is the station time zone. The empty string means
	// the host's local zone.
	// Override via config: calendar.timezone
	DefaultTimezone = ""
)

// =============================================================================
// Summary Defaults
// =============================================================================

const (
	// DefaultRainDayThreshold is the daily rain total (mm) from which a
	// day counts as a rain day in the monthly summary.
	// Override via config: summary.rain_day_threshold
	DefaultRainDayThreshold = 0.2

	// DefaultRainSpikeFactor rejects implausible rain counter jumps: a
	// single-sample increase above factor * delay-minutes mm is treated
	// as a counter glitch and ignored.
	// Override via config: summary.rain_spike_factor
	DefaultRainSpikeFactor = 5.0

	// DefaultGateMinute is the hourly completeness gate. An hourly
	// summary is stored only if its last contributing sample falls at or
	// after this minute of the hour, so an hour covered by a single
	// early sample is not published as a summary.
	// Override via config: summary.gate_minute
	DefaultGateMinute = 9

	// DefaultIntervalTolerance is the slack between the observed sample
	// spacing and the reading's declared logging interval before the
	// gap is logged as unexpected.
	// Override via config: summary.interval_tolerance
	DefaultIntervalTolerance = 45 * time.Second

	// DefaultTrendWindow is how far back the pressure trend looks.
	// Override via config: summary.trend_window
	DefaultTrendWindow = 3 * time.Hour

	// DefaultTrendTolerance is how close to the exact trend target a
	// history sample must be for the trend to be reported at all.
	// Override via config: summary.trend_tolerance
	DefaultTrendTolerance = time.Hour
)

// =============================================================================
// Calibration Defaults
// =============================================================================

const (
	// DefaultPressureOffset (hPa) converts absolute station pressure to
	// sea-level relative pressure. Zero disables the adjustment; set it
	// from a nearby reference station.
	// Override via config: calibration.pressure_offset
	DefaultPressureOffset = 0.0
)

// =============================================================================
// Report Defaults
// =============================================================================

const (
	// DefaultSketchAccuracy is the relative accuracy of the quantile
	// sketches used by distribution reports. 0.01 keeps p99 within 1%.
	// Override via config: report.sketch_accuracy
	DefaultSketchAccuracy = 0.01
)
