package store

import (
	"strconv"
	"time"

	"github.com/wxlog/wxlog/internal/errors"
)

// TimeFormat is the textual timestamp format used both for index values in
// partition files and for timestamp-valued fields. All timestamps are UTC.
const TimeFormat = "2006-01-02 15:04:05"

// Kind identifies the semantic type of a schema field.
type Kind int

const (
	// KindFloat is a floating point measurement (e.g. temperature).
	KindFloat Kind = iota
	// KindInt is an integer measurement (e.g. humidity, compass index).
	KindInt
	// KindTime is a UTC timestamp (e.g. time of maximum gust).
	KindTime
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Value is an optional typed scalar. The zero Value is "no value", which
// encodes to an empty token in partition files. The in-memory representation
// is typed; the empty-token text encoding is purely a serialization detail.
type Value struct {
	kind    Kind
	f       float64
	i       int64
	t       time.Time
	present bool
}

// None returns the absent Value.
func None() Value { return Value{} }

// Float returns a float Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v, present: true} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v, present: true} }

// Time returns a timestamp Value. Sub-second precision is not representable
// in the text format and is truncated on encode.
func Time(v time.Time) Value { return Value{kind: KindTime, t: v.UTC(), present: true} }

// IsNone reports whether the value is absent.
func (v Value) IsNone() bool { return !v.present }

// Float64 returns the value as a float64. Integer values are widened.
// ok is false if the value is absent or a timestamp.
func (v Value) Float64() (float64, bool) {
	if !v.present {
		return 0, false
	}
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// Int64 returns the value as an int64. ok is false if the value is absent
// or not an integer.
func (v Value) Int64() (int64, bool) {
	if !v.present || v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Timestamp returns the value as a time.Time. ok is false if the value is
// absent or not a timestamp.
func (v Value) Timestamp() (time.Time, bool) {
	if !v.present || v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// encode renders the value as a partition file token. Absent values encode
// as the empty string.
func (v Value) encode() string {
	if !v.present {
		return ""
	}
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindTime:
		return v.t.Format(TimeFormat)
	}
	return ""
}

// decodeValue parses a partition file token according to the field kind.
// The empty token decodes to None.
func decodeValue(token string, kind Kind) (Value, error) {
	if token == "" {
		return None(), nil
	}
	switch kind {
	case KindFloat:
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return None(), errors.Wrapf(err, "float token %q", token)
		}
		return Float(f), nil
	case KindInt:
		i, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			// Older producers write integral fields as floats.
			f, ferr := strconv.ParseFloat(token, 64)
			if ferr != nil {
				return None(), errors.Wrapf(err, "int token %q", token)
			}
			return Int(int64(f)), nil
		}
		return Int(i), nil
	case KindTime:
		t, err := time.ParseInLocation(TimeFormat, token, time.UTC)
		if err != nil {
			return None(), errors.Wrapf(err, "time token %q", token)
		}
		return Time(t), nil
	}
	return None(), errors.Wrapf(errors.ErrInvalidIndex, "unknown kind %d", kind)
}
