package store

import "time"

// Reading is one record: a timestamp index plus a mapping from field name
// to optional typed value. The field set is fixed by the owning store's
// schema; fields never written are simply absent.
type Reading struct {
	Index  time.Time
	fields map[string]Value
}

// NewReading creates an empty reading at the given index.
func NewReading(index time.Time) *Reading {
	return &Reading{
		Index:  index.UTC().Truncate(time.Second),
		fields: make(map[string]Value),
	}
}

// Get returns the value of a field. Unset fields return None.
func (r *Reading) Get(name string) Value {
	if r.fields == nil {
		return None()
	}
	return r.fields[name]
}

// Set stores a field value.
func (r *Reading) Set(name string, v Value) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	r.fields[name] = v
}

// Float64 returns a field as float64, with ok reporting presence.
func (r *Reading) Float64(name string) (float64, bool) {
	return r.Get(name).Float64()
}

// Int64 returns a field as int64, with ok reporting presence.
func (r *Reading) Int64(name string) (int64, bool) {
	return r.Get(name).Int64()
}

// Timestamp returns a field as a time.Time, with ok reporting presence.
func (r *Reading) Timestamp(name string) (time.Time, bool) {
	return r.Get(name).Timestamp()
}

// Has reports whether the field is present (set and not None).
func (r *Reading) Has(name string) bool {
	return !r.Get(name).IsNone()
}

// Clone returns a deep copy of the reading.
func (r *Reading) Clone() *Reading {
	c := NewReading(r.Index)
	for k, v := range r.fields {
		c.fields[k] = v
	}
	return c
}

// CopyFields copies the named fields from src, including absent ones, so a
// stale value never survives an overwrite.
func (r *Reading) CopyFields(src *Reading, names ...string) {
	for _, n := range names {
		r.Set(n, src.Get(n))
	}
}
