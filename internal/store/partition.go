package store

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wxlog/wxlog/internal/errors"
)

// A partition is one calendar day's readings, held as a slice ordered by
// strictly increasing index. It is the unit of file-level caching: loads
// and saves are whole-file operations, never partial appends.

// loadPartition reads a partition file into memory. A missing file is an
// empty partition, not an error. Any unparsable line is fatal for the load
// and surfaces as ErrMalformedPartition.
func loadPartition(path string, schema *Schema) ([]*Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var readings []*Reading
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		r, err := decodeLine(line, schema)
		if err != nil {
			return nil, errors.NewMalformedPartition(path, lineNo, err)
		}
		readings = append(readings, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return readings, nil
}

// savePartition writes a partition back to disk, creating parent
// directories as needed. An empty partition deletes the file: a day with no
// readings must not leave an empty file behind.
func savePartition(path string, schema *Schema, readings []*Reading) error {
	if len(readings) == 0 {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, r := range readings {
		if _, err := w.WriteString(encodeLine(r, schema)); err != nil {
			f.Close()
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// encodeLine renders a reading as one partition file line: fields in schema
// order, comma separated, absent values as empty tokens.
func encodeLine(r *Reading, schema *Schema) string {
	tokens := make([]string, len(schema.Fields))
	for i, field := range schema.Fields {
		if field.Name == FieldIndex {
			tokens[i] = r.Index.Format(TimeFormat)
			continue
		}
		tokens[i] = r.Get(field.Name).encode()
	}
	return strings.Join(tokens, ",")
}

// decodeLine parses one partition file line according to the schema. Lines
// with fewer tokens than schema fields are accepted with trailing fields
// absent (older files predate optional trailing columns); extra tokens are
// an error.
func decodeLine(line string, schema *Schema) (*Reading, error) {
	tokens := strings.Split(line, ",")
	if len(tokens) > len(schema.Fields) {
		return nil, errors.Wrapf(errors.ErrUnknownField,
			"%d tokens for %d fields", len(tokens), len(schema.Fields))
	}
	var r *Reading
	for i, token := range tokens {
		field := schema.Fields[i]
		if field.Name == FieldIndex {
			idx, err := time.ParseInLocation(TimeFormat, token, time.UTC)
			if err != nil {
				return nil, errors.Wrapf(err, "index token %q", token)
			}
			r = NewReading(idx)
			continue
		}
		if r == nil {
			return nil, errors.New("index is not the first field")
		}
		v, err := decodeValue(token, field.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", field.Name)
		}
		if !v.IsNone() {
			r.Set(field.Name, v)
		}
	}
	if r == nil {
		return nil, errors.New("missing index field")
	}
	return r, nil
}

// searchPartition returns the position of the first reading whose index is
// >= idx, using binary search over the ordered slice.
func searchPartition(readings []*Reading, idx time.Time) int {
	lo, hi := 0, len(readings)
	for lo < hi {
		mid := (lo + hi) / 2
		if readings[mid].Index.Before(idx) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
