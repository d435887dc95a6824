package parquet

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/wxlog/wxlog/internal/store"
)

// Options configures the Parquet writer.
type Options struct {
	// Compression algorithm
	Compression CompressionType

	// CompressionLevel for algorithms that support it (zstd: 1-22)
	CompressionLevel int
}

// CompressionType represents a Parquet compression algorithm.
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

// DefaultOptions returns default Parquet options.
func DefaultOptions() Options {
	return Options{
		Compression:      CompressionZstd,
		CompressionLevel: 3,
	}
}

// ParseCompressionType parses a compression type string.
func ParseCompressionType(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	case "gzip":
		return CompressionGzip
	case "none", "":
		return CompressionNone
	default:
		return CompressionZstd
	}
}

// getCompression returns the parquet-go compression codec.
func getCompression(ct CompressionType) compress.Codec {
	switch ct {
	case CompressionSnappy:
		return &parquet.Snappy
	case CompressionZstd:
		return &parquet.Zstd
	case CompressionLZ4:
		return &parquet.Lz4Raw
	case CompressionGzip:
		return &parquet.Gzip
	default:
		return &parquet.Uncompressed
	}
}

// SummaryRow is one field value of one record in tall form. Exactly one
// of Value and TimeMs is set, matching the field's kind in the store
// schema.
type SummaryRow struct {
	Kind        string   `parquet:"kind,zstd"`
	TimestampMs int64    `parquet:"timestamp_ms"`
	Field       string   `parquet:"field,zstd"`
	Value       *float64 `parquet:"value,optional"`
	TimeMs      *int64   `parquet:"time_ms,optional"`
}

// ReadingToRows converts a reading to tall rows, one per present field,
// in schema order. The index field itself is not emitted as a row; it is
// the timestamp of every row.
func ReadingToRows(kind string, schema *store.Schema, r *store.Reading) []SummaryRow {
	rows := make([]SummaryRow, 0, len(schema.Fields))
	ms := r.Index.UnixMilli()
	for _, f := range schema.Fields {
		if f.Name == store.FieldIndex {
			continue
		}
		row := SummaryRow{Kind: kind, TimestampMs: ms, Field: f.Name}
		switch f.Kind {
		case store.KindTime:
			t, ok := r.Timestamp(f.Name)
			if !ok {
				continue
			}
			tms := t.UnixMilli()
			row.TimeMs = &tms
		default:
			v, ok := r.Float64(f.Name)
			if !ok {
				continue
			}
			row.Value = &v
		}
		rows = append(rows, row)
	}
	return rows
}

// RowsToReadings reassembles tall rows into readings. Rows must be
// grouped by timestamp, as ReadingToRows and SummaryWriter produce them.
// Field kinds are taken from the schema; unknown fields are skipped.
func RowsToReadings(schema *store.Schema, rows []SummaryRow) []*store.Reading {
	var (
		out []*store.Reading
		cur *store.Reading
	)
	for i := range rows {
		row := &rows[i]
		idx := time.UnixMilli(row.TimestampMs).UTC()
		if cur == nil || !cur.Index.Equal(idx) {
			cur = store.NewReading(idx)
			out = append(out, cur)
		}
		fi := schema.Index(row.Field)
		if fi < 0 {
			continue
		}
		switch schema.Fields[fi].Kind {
		case store.KindTime:
			if row.TimeMs != nil {
				cur.Set(row.Field, store.Time(time.UnixMilli(*row.TimeMs).UTC()))
			}
		case store.KindInt:
			if row.Value != nil {
				cur.Set(row.Field, store.Int(int64(*row.Value)))
			}
		default:
			if row.Value != nil {
				cur.Set(row.Field, store.Float(*row.Value))
			}
		}
	}
	return out
}

// SummaryWriter writes tall rows to a Parquet file.
type SummaryWriter struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[SummaryRow]
	rowCount int64
	closed   bool
}

// NewSummaryWriter creates a new Parquet writer for tall summary rows.
func NewSummaryWriter(path string, opts Options) (*SummaryWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	writerOpts := []parquet.WriterOption{
		parquet.Compression(getCompression(opts.Compression)),
	}

	return &SummaryWriter{
		path:   path,
		file:   f,
		writer: parquet.NewGenericWriter[SummaryRow](f, writerOpts...),
	}, nil
}

// WriteReading appends one reading as tall rows.
func (w *SummaryWriter) WriteReading(kind string, schema *store.Schema, r *store.Reading) error {
	return w.Write(ReadingToRows(kind, schema, r))
}

// Write appends rows to the Parquet file.
func (w *SummaryWriter) Write(rows []SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	n, err := w.writer.Write(rows)
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	w.rowCount += int64(n)
	return nil
}

// Close closes the writer.
func (w *SummaryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close writer: %w", err)
	}

	return w.file.Close()
}

// RowCount returns the number of rows written.
func (w *SummaryWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the file path.
func (w *SummaryWriter) Path() string {
	return w.path
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = fmt.Errorf("parquet writer is closed")
