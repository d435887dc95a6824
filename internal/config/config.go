package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	wxdefaults "github.com/wxlog/wxlog/config"
)

// Config represents the complete wxlog configuration.
type Config struct {
	// DataDir is the root directory for all weather data stores.
	DataDir string `yaml:"data_dir"`

	// Calendar defines the station's local calendar.
	Calendar CalendarConfig `yaml:"calendar"`

	// Calibration configures the raw data calibration.
	Calibration CalibrationConfig `yaml:"calibration"`

	// Summary configures the summary generation heuristics.
	Summary SummaryConfig `yaml:"summary"`

	// Export configures the Parquet export.
	Export ExportConfig `yaml:"export"`

	// Query configures the SQL query service.
	Query QueryConfig `yaml:"query"`

	// Report configures distribution reports.
	Report ReportConfig `yaml:"report"`
}

// CalendarConfig defines the station's local calendar.
type CalendarConfig struct {
	// Timezone is an IANA zone name like "Europe/London". Empty means
	// the host's local zone.
	Timezone string `yaml:"timezone"`

	// DayEndHour is the local hour at which a meteorological day ends.
	DayEndHour int `yaml:"day_end_hour"`

	// DSTAware recomputes the UTC offset at every bucket boundary
	// instead of using the fixed standard offset.
	DSTAware bool `yaml:"dst_aware"`
}

// CalibrationConfig configures the raw data calibration.
type CalibrationConfig struct {
	// PressureOffset (hPa) converts absolute to sea-level pressure.
	PressureOffset float64 `yaml:"pressure_offset"`
}

// SummaryConfig configures the summary generation heuristics.
type SummaryConfig struct {
	// RainDayThreshold is the daily rain total (mm) from which a day
	// counts as a rain day.
	RainDayThreshold float64 `yaml:"rain_day_threshold"`

	// RainSpikeFactor rejects rain counter jumps above
	// factor * delay-minutes mm in a single sample.
	RainSpikeFactor float64 `yaml:"rain_spike_factor"`

	// GateMinute is the hourly completeness gate minute.
	GateMinute int `yaml:"gate_minute"`

	// IntervalTolerance is the allowed slack around the declared
	// sample interval before a gap is logged.
	IntervalTolerance time.Duration `yaml:"interval_tolerance"`

	// TrendWindow is how far back the pressure trend looks.
	TrendWindow time.Duration `yaml:"trend_window"`

	// TrendTolerance is the maximum distance from the trend target.
	TrendTolerance time.Duration `yaml:"trend_tolerance"`
}

// ExportConfig configures the Parquet export.
type ExportConfig struct {
	// Enabled enables exporting summaries after each run.
	Enabled bool `yaml:"enabled"`

	// Dir is the export directory. Defaults to {DataDir}/export.
	Dir string `yaml:"dir"`
}

// QueryConfig configures the SQL query service.
type QueryConfig struct {
	// MemoryLimit is the DuckDB memory limit.
	MemoryLimit string `yaml:"memory_limit"`

	// Timeout is the query timeout.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRows is the maximum number of rows returned.
	MaxRows int `yaml:"max_rows"`
}

// ReportConfig configures distribution reports.
type ReportConfig struct {
	// SketchAccuracy is the relative accuracy of the quantile sketches.
	SketchAccuracy float64 `yaml:"sketch_accuracy"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "/var/lib/wxlog/data",
		Calendar: CalendarConfig{
			Timezone:   wxdefaults.DefaultTimezone,
			DayEndHour: wxdefaults.DefaultDayEndHour,
		},
		Calibration: CalibrationConfig{
			PressureOffset: wxdefaults.DefaultPressureOffset,
		},
		Summary: SummaryConfig{
			RainDayThreshold:  wxdefaults.DefaultRainDayThreshold,
			RainSpikeFactor:   wxdefaults.DefaultRainSpikeFactor,
			GateMinute:        wxdefaults.DefaultGateMinute,
			IntervalTolerance: wxdefaults.DefaultIntervalTolerance,
			TrendWindow:       wxdefaults.DefaultTrendWindow,
			TrendTolerance:    wxdefaults.DefaultTrendTolerance,
		},
		Query: QueryConfig{
			MemoryLimit: "1GB",
			Timeout:     30 * time.Second,
			MaxRows:     1000000,
		},
		Report: ReportConfig{
			SketchAccuracy: wxdefaults.DefaultSketchAccuracy,
		},
	}
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}
