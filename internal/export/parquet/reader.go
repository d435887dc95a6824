package parquet

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// SummaryReader reads tall rows from a Parquet file.
type SummaryReader struct {
	file   *os.File
	reader *parquet.GenericReader[SummaryRow]
	path   string
}

// NewSummaryReader creates a new Parquet reader for tall summary rows.
func NewSummaryReader(path string) (*SummaryReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	reader := parquet.NewGenericReader[SummaryRow](f)

	return &SummaryReader{
		file:   f,
		reader: reader,
		path:   path,
	}, nil
}

// Read reads up to n rows from the file.
func (r *SummaryReader) Read(n int) ([]SummaryRow, error) {
	rows := make([]SummaryRow, n)
	count, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return rows[:count], nil
}

// ReadAll reads all rows from the file.
func (r *SummaryReader) ReadAll() ([]SummaryRow, error) {
	rows := make([]SummaryRow, r.reader.NumRows())
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return rows[:n], nil
}

// NumRows returns the total number of rows in the file.
func (r *SummaryReader) NumRows() int64 {
	return r.reader.NumRows()
}

// Close closes the reader.
func (r *SummaryReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// Path returns the file path.
func (r *SummaryReader) Path() string {
	return r.path
}
