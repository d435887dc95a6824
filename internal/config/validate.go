package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	// DataDir
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}

	// Calendar
	if err := c.Calendar.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("calendar: %w", err))
	}

	// Summary
	if err := c.Summary.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("summary: %w", err))
	}

	// Query
	if err := c.Query.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("query: %w", err))
	}

	// Report
	if err := c.Report.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("report: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the calendar configuration.
func (c *CalendarConfig) Validate() error {
	var errs []error

	if c.DayEndHour < 0 || c.DayEndHour > 23 {
		errs = append(errs, errors.New("day_end_hour must be between 0 and 23"))
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("unknown timezone %q", c.Timezone))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the summary configuration.
func (c *SummaryConfig) Validate() error {
	var errs []error

	if c.RainDayThreshold < 0 {
		errs = append(errs, errors.New("rain_day_threshold must be non-negative"))
	}

	if c.RainSpikeFactor <= 0 {
		errs = append(errs, errors.New("rain_spike_factor must be positive"))
	}

	if c.GateMinute < 0 || c.GateMinute > 59 {
		errs = append(errs, errors.New("gate_minute must be between 0 and 59"))
	}

	if c.IntervalTolerance <= 0 {
		errs = append(errs, errors.New("interval_tolerance must be positive"))
	}

	if c.TrendWindow <= 0 {
		errs = append(errs, errors.New("trend_window must be positive"))
	}

	if c.TrendTolerance <= 0 || c.TrendTolerance > c.TrendWindow {
		errs = append(errs, errors.New("trend_tolerance must be positive and at most trend_window"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the query configuration.
func (c *QueryConfig) Validate() error {
	var errs []error

	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	if c.MaxRows <= 0 {
		errs = append(errs, errors.New("max_rows must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the report configuration.
func (c *ReportConfig) Validate() error {
	if c.SketchAccuracy <= 0 || c.SketchAccuracy >= 1 {
		return errors.New("sketch_accuracy must be between 0 and 1")
	}
	return nil
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.StoreDir("raw"),
		c.StoreDir("calib"),
		c.StoreDir("hourly"),
		c.StoreDir("daily"),
		c.StoreDir("monthly"),
		c.ExportDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// StoreDir returns the directory path for a store kind.
func (c *Config) StoreDir(kind string) string {
	return filepath.Join(c.DataDir, kind)
}

// ExportDir returns the Parquet export directory path.
func (c *Config) ExportDir() string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	return filepath.Join(c.DataDir, "export")
}
