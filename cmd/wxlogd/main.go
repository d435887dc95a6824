// wxlogd generates weather summary data from raw station logs.
//
// It reads the raw store under the data directory, regenerates the
// calibrated, hourly, daily and monthly stores, and optionally exports
// the results to Parquet for SQL analysis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io/fs"
	"log"
	"log/slog"
	"os"

	"github.com/wxlog/wxlog/internal/calib"
	"github.com/wxlog/wxlog/internal/config"
	"github.com/wxlog/wxlog/internal/errors"
	"github.com/wxlog/wxlog/internal/export/parquet"
	"github.com/wxlog/wxlog/internal/logging"
	"github.com/wxlog/wxlog/internal/process"
	"github.com/wxlog/wxlog/internal/query"
	"github.com/wxlog/wxlog/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// CLI flags
	cfgPath := flag.String("config", "config.yaml", "config file path")
	dataDir := flag.String("data", "", "data directory (overrides config)")
	export := flag.Bool("export", false, "export summaries to Parquet after processing")
	sqlQuery := flag.String("sql", "", "run a SQL query over exported data and exit")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	jsonLogs := flag.Bool("json-logs", false, "log in JSON format")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, *jsonLogs)

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Printf("wxlogd %s starting...", Version)

	// Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("No config file found, using defaults")
			cfg = config.DefaultConfig()
		} else {
			log.Fatalf("Load config: %v", err)
		}
	}

	// CLI overrides
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *export {
		cfg.Export.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Validate config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Create directories: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Resolve timezone: %v", err)
	}

	// =========================================================================
	// Ad-hoc SQL mode
	// =========================================================================

	if *sqlQuery != "" {
		svc, err := query.New(cfg)
		if err != nil {
			log.Fatalf("Create query service: %v", err)
		}
		defer svc.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Query.Timeout)
		defer cancel()

		rows, err := svc.ExecuteSQL(ctx, *sqlQuery)
		if err != nil {
			log.Fatalf("Query: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				log.Fatalf("Encode row: %v", err)
			}
		}
		return
	}

	// =========================================================================
	// Open Stores
	// =========================================================================

	open := func(kind string, schema *store.Schema) *store.TimeStore {
		s, err := store.Open(cfg.StoreDir(kind), schema)
		if err != nil {
			log.Fatalf("Open %s store: %v", kind, err)
		}
		return s
	}
	stores := process.Stores{
		Raw:     open("raw", store.RawSchema()),
		Calib:   open("calib", store.CalibSchema()),
		Hourly:  open("hourly", store.HourlySchema()),
		Daily:   open("daily", store.DailySchema()),
		Monthly: open("monthly", store.MonthlySchema()),
	}

	// =========================================================================
	// Process
	// =========================================================================

	opts := process.Options{
		Location:          loc,
		DayEndHour:        cfg.Calendar.DayEndHour,
		DSTAware:          cfg.Calendar.DSTAware,
		RainDayThreshold:  cfg.Summary.RainDayThreshold,
		RainSpikeFactor:   cfg.Summary.RainSpikeFactor,
		GateMinute:        cfg.Summary.GateMinute,
		IntervalTolerance: cfg.Summary.IntervalTolerance,
		TrendWindow:       cfg.Summary.TrendWindow,
		TrendTolerance:    cfg.Summary.TrendTolerance,
	}
	calibrator := &calib.Default{PressureOffset: cfg.Calibration.PressureOffset}

	pipe := process.New(calibrator, stores, opts)
	if err := pipe.Run(); err != nil {
		if errors.Is(err, errors.ErrNoData) {
			log.Fatalf("No raw data found under %s", cfg.StoreDir("raw"))
		}
		log.Fatalf("Process: %v", err)
	}

	// =========================================================================
	// Export
	// =========================================================================

	if cfg.Export.Enabled {
		exp := parquet.NewExporter(cfg.ExportDir(), parquet.DefaultOptions())
		for _, e := range []struct {
			kind   string
			schema *store.Schema
			s      *store.TimeStore
		}{
			{"hourly", store.HourlySchema(), stores.Hourly},
			{"daily", store.DailySchema(), stores.Daily},
			{"monthly", store.MonthlySchema(), stores.Monthly},
		} {
			if _, err := exp.ExportStore(e.kind, e.schema, e.s); err != nil {
				log.Fatalf("Export %s: %v", e.kind, err)
			}
		}
	}

	log.Printf("Done")
}
