package parquet

import (
	"log/slog"
	"path/filepath"

	"github.com/wxlog/wxlog/internal/logging"
	"github.com/wxlog/wxlog/internal/store"
)

// Exporter dumps whole stores to per-kind Parquet files, one file per
// store kind, named <dir>/<kind>.parquet. Each export rewrites the file
// from scratch, so repeated exports stay consistent with the stores.
type Exporter struct {
	log  *slog.Logger
	dir  string
	opts Options
}

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string, opts Options) *Exporter {
	return &Exporter{
		log:  logging.Component("export"),
		dir:  dir,
		opts: opts,
	}
}

// FilePath returns the export file path for a store kind.
func (e *Exporter) FilePath(kind string) string {
	return filepath.Join(e.dir, kind+".parquet")
}

// ExportStore writes the store's full contents and returns the number of
// rows written.
func (e *Exporter) ExportStore(kind string, schema *store.Schema, s *store.TimeStore) (int64, error) {
	w, err := NewSummaryWriter(e.FilePath(kind), e.opts)
	if err != nil {
		return 0, err
	}
	cur := s.Range(store.MinTime, store.MaxTime)
	for {
		data, err := cur.Next()
		if err != nil {
			w.Close()
			return 0, err
		}
		if data == nil {
			break
		}
		if err := w.WriteReading(kind, schema, data); err != nil {
			w.Close()
			return 0, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	e.log.Info("exported store", "kind", kind, "path", w.Path(), "rows", w.RowCount())
	return w.RowCount(), nil
}
