// Package query provides SQL query capabilities over exported weather
// data. It uses DuckDB to query the Parquet files written by the export
// layer, so ad-hoc analysis does not need to parse the store files.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/wxlog/wxlog/internal/config"
)

// Service provides query capabilities over exported Parquet files.
type Service struct {
	mu sync.RWMutex

	config *config.Config
	db     *sql.DB

	stats Stats
}

// Stats holds query statistics.
type Stats struct {
	QueriesExecuted int64
	RowsReturned    int64
	Errors          int64
}

// FieldQuery selects one field of one store kind over a time range.
type FieldQuery struct {
	// Kind is the store kind: raw, calib, hourly, daily or monthly.
	Kind string

	// Field is the field name, e.g. "temp_out" or "rain".
	Field string

	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// FieldPoint is one value of a queried field.
type FieldPoint struct {
	Timestamp time.Time
	Value     float64
}

// New creates a new query service over the configured export directory.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Open in-memory DuckDB database
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if cfg.Query.MemoryLimit != "" {
		_, err = db.Exec(fmt.Sprintf("SET memory_limit='%s'", cfg.Query.MemoryLimit))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", err)
		}
	}

	return &Service{
		config: cfg,
		db:     db,
	}, nil
}

// Close closes the query service.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// QueryField returns the values of one field over a time range, in
// timestamp order.
func (s *Service) QueryField(ctx context.Context, q FieldQuery) ([]FieldPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.config.ExportDir(), q.Kind+".parquet")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			// Nothing exported for this kind yet.
			return nil, nil
		}
		return nil, fmt.Errorf("stat export file: %w", err)
	}

	query := `
		SELECT timestamp_ms, value
		FROM read_parquet($1)
		WHERE field = $2
		  AND value IS NOT NULL
		  AND timestamp_ms >= $3
		  AND timestamp_ms < $4
		ORDER BY timestamp_ms
	`

	rows, err := s.db.QueryContext(ctx, query,
		path,
		q.Field,
		q.StartTime.UnixMilli(),
		q.EndTime.UnixMilli(),
	)
	if err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("query %s export: %w", q.Kind, err)
	}
	defer rows.Close()

	var results []FieldPoint
	for rows.Next() {
		var ms int64
		var v float64
		if err := rows.Scan(&ms, &v); err != nil {
			s.stats.Errors++
			return nil, fmt.Errorf("scan row: %w", err)
		}
		results = append(results, FieldPoint{
			Timestamp: time.UnixMilli(ms).UTC(),
			Value:     v,
		})
	}
	if err := rows.Err(); err != nil {
		s.stats.Errors++
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.config.Query.MaxRows
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(len(results))

	return results, nil
}

// Stats returns query statistics.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// ExecuteSQL executes a raw SQL query using DuckDB.
// This is useful for ad-hoc queries and debugging.
func (s *Service) ExecuteSQL(ctx context.Context, query string) ([]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.stats.Errors++
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(len(results))

	return results, rows.Err()
}
