package store

import "time"

// Cursor is a forward-only, pull-driven view of the readings with
// start <= index < end. It cannot be rewound; issue a new Range call to
// restart. Abandoning a cursor mid-stream needs no cleanup: every
// partition load behind it is a self-contained operation.
//
// The cursor reads through the owning store's partition cache, so the
// store must not be written between Next calls.
type Cursor struct {
	s    *TimeStore
	next time.Time
	end  time.Time
	done bool
}

// Range returns a cursor over readings with start <= index < end. Use
// MinTime or MaxTime to leave either end open.
func (s *TimeStore) Range(start, end time.Time) *Cursor {
	return &Cursor{s: s, next: start.UTC(), end: end.UTC()}
}

// Next returns the next reading in the range, or (nil, nil) once the range
// is exhausted. The forward scan rides the store's position hint, so
// sequential consumption is O(1) amortized per reading.
func (c *Cursor) Next() (*Reading, error) {
	if c.done {
		return nil, nil
	}
	idx, ok, err := c.s.After(c.next)
	if err != nil {
		return nil, err
	}
	if !ok || !idx.Before(c.end) {
		c.done = true
		return nil, nil
	}
	r, err := c.s.Get(idx)
	if err != nil {
		return nil, err
	}
	c.next = idx.Add(time.Second)
	return r, nil
}

// Collect drains the cursor into a slice. Intended for tests and small
// ranges; pipeline stages consume cursors incrementally.
func (c *Cursor) Collect() ([]*Reading, error) {
	var out []*Reading
	for {
		r, err := c.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			return out, nil
		}
		out = append(out, r)
	}
}
