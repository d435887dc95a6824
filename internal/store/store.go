// Package store implements a time-partitioned, file-backed store of weather
// readings indexed by timestamp.
//
// A separate file is used for each calendar day's data, to keep memory load
// reasonable. One day at a time is held in memory, and saved to disk when
// another day needs to be accessed. The operational contract is a single
// writer process per store directory; there is no locking.
package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wxlog/wxlog/internal/errors"
	"github.com/wxlog/wxlog/internal/logging"
)

// MinTime and MaxTime are open-range sentinels for DeleteRange and Range.
var (
	MinTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

const (
	// Conservative bounds for a store with no data yet: first after last,
	// so every scan loop terminates immediately.
	noFirstDay = 1 << 30
	noLastDay  = -(1 << 30)
)

// dayOrdinal converts a timestamp to its UTC calendar day number
// (days since the Unix epoch, floored).
func dayOrdinal(t time.Time) int {
	sec := t.Unix()
	day := sec / 86400
	if sec%86400 < 0 {
		day--
	}
	return int(day)
}

// dayStart returns the UTC midnight starting the given day ordinal.
func dayStart(day int) time.Time {
	return time.Unix(int64(day)*86400, 0).UTC()
}

// TimeStore is a generic partitioned store for one store kind. Exactly one
// day's partition is resident at a time, together with a dirty flag and a
// monotonic position hint that makes forward sequential scans O(1)
// amortized (the dominant access pattern).
type TimeStore struct {
	rootDir string
	schema  *Schema
	log     *slog.Logger

	// First and last day ordinals for which data (might) exist.
	// lastDay is exclusive, like the cache bounds below.
	firstDay int
	lastDay  int

	cache      []*Reading
	cachePtr   int
	cacheLo    int // day ordinal of the resident partition
	cacheHi    int // cacheLo + 1
	cachePath  string
	cacheDirty bool
}

// Open opens (or initializes) a store rooted at dir. Construction performs
// one directory walk over file names only, to discover the first and last
// populated days; no partition data is read.
func Open(dir string, schema *Schema) (*TimeStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &TimeStore{
		rootDir:  dir,
		schema:   schema,
		log:      logging.Component("store").With("kind", schema.Name),
		firstDay: noFirstDay,
		lastDay:  noLastDay,
		cacheLo:  noFirstDay,
		cacheHi:  noLastDay,
	}
	first, last, err := scanBounds(dir)
	if err != nil {
		return nil, err
	}
	if !first.IsZero() {
		s.firstDay = dayOrdinal(first)
		s.lastDay = dayOrdinal(last) + 1
	}
	return s, nil
}

// scanBounds walks the <YYYY>/<YYYY-MM>/<YYYY-MM-DD>.txt tree and returns
// the dates of the first and last partition files, or zero times if none.
func scanBounds(root string) (first, last time.Time, err error) {
	var days []time.Time
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		day, perr := time.ParseInLocation("2006-01-02.txt", d.Name(), time.UTC)
		if perr != nil {
			return nil // not a partition file
		}
		days = append(days, day)
		return nil
	})
	if err != nil || len(days) == 0 {
		return time.Time{}, time.Time{}, err
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days[0], days[len(days)-1], nil
}

// partitionPath returns the file path for a day ordinal:
// <root>/<YYYY>/<YYYY-MM>/<YYYY-MM-DD>.txt
func (s *TimeStore) partitionPath(day int) string {
	d := dayStart(day)
	return filepath.Join(s.rootDir,
		d.Format("2006"),
		d.Format("2006-01"),
		d.Format("2006-01-02.txt"))
}

// Schema returns the store's schema.
func (s *TimeStore) Schema() *Schema { return s.schema }

// Bounds returns the UTC midnights delimiting the days for which data may
// exist (last is exclusive). ok is false for a store that has never held
// data.
func (s *TimeStore) Bounds() (first, last time.Time, ok bool) {
	if s.firstDay >= s.lastDay {
		return time.Time{}, time.Time{}, false
	}
	return dayStart(s.firstDay), dayStart(s.lastDay), true
}

// ensureDay makes the given day's partition resident, flushing the previous
// partition first if dirty. An absent file yields an empty partition.
func (s *TimeStore) ensureDay(day int) error {
	if day >= s.cacheLo && day < s.cacheHi {
		return nil
	}
	if err := s.Flush(); err != nil {
		return err
	}
	path := s.partitionPath(day)
	cache, err := loadPartition(path, s.schema)
	if err != nil {
		return err
	}
	s.cache = cache
	s.cachePtr = 0
	s.cacheLo = day
	s.cacheHi = day + 1
	s.cachePath = path
	s.cacheDirty = false
	return nil
}

// Flush writes the resident partition to disk if it has unsaved changes.
// A partition that has become empty is removed rather than saved.
func (s *TimeStore) Flush() error {
	if !s.cacheDirty {
		return nil
	}
	if err := savePartition(s.cachePath, s.schema, s.cache); err != nil {
		return err
	}
	// The partition stays dirty until the save has actually succeeded, so
	// a failed flush can be retried instead of silently dropping the data
	// on the next eviction.
	s.cacheDirty = false
	return nil
}

// Close flushes any unsaved changes.
func (s *TimeStore) Close() error { return s.Flush() }

// setCachePtr positions the cache pointer at the first resident reading
// whose index is >= idx, loading the right partition first. The pointer
// moves forward cheaply and walks back linearly when the target index moves
// behind it.
func (s *TimeStore) setCachePtr(idx time.Time) error {
	if err := s.ensureDay(dayOrdinal(idx)); err != nil {
		return err
	}
	if s.cachePtr < len(s.cache) && s.cache[s.cachePtr].Index.Before(idx) {
		s.cachePtr++
		for s.cachePtr < len(s.cache) && s.cache[s.cachePtr].Index.Before(idx) {
			s.cachePtr++
		}
		return nil
	}
	for s.cachePtr > 0 && !s.cache[s.cachePtr-1].Index.Before(idx) {
		s.cachePtr--
	}
	return nil
}

// Get returns the reading stored at exactly idx. A miss is reported as
// ErrNotFound: an expected outcome, not a defect.
func (s *TimeStore) Get(idx time.Time) (*Reading, error) {
	idx = idx.UTC().Truncate(time.Second)
	if err := s.setCachePtr(idx); err != nil {
		return nil, err
	}
	if s.cachePtr >= len(s.cache) || !s.cache[s.cachePtr].Index.Equal(idx) {
		return nil, errors.NewNotFound(idx)
	}
	return s.cache[s.cachePtr].Clone(), nil
}

// Set stores a reading at idx, overwriting any existing reading with that
// index. Writing outside the current bounds widens them.
func (s *TimeStore) Set(idx time.Time, r *Reading) error {
	idx = idx.UTC().Truncate(time.Second)
	if err := s.setCachePtr(idx); err != nil {
		return err
	}
	x := r.Clone()
	x.Index = idx
	if len(s.cache) == 0 {
		if s.cacheLo < s.firstDay {
			s.firstDay = s.cacheLo
		}
		if s.cacheHi > s.lastDay {
			s.lastDay = s.cacheHi
		}
	}
	if s.cachePtr < len(s.cache) && s.cache[s.cachePtr].Index.Equal(idx) {
		s.cache[s.cachePtr] = x
	} else {
		s.cache = append(s.cache, nil)
		copy(s.cache[s.cachePtr+1:], s.cache[s.cachePtr:])
		s.cache[s.cachePtr] = x
	}
	s.cacheDirty = true
	return nil
}

// Delete removes the reading stored at exactly idx, reporting ErrNotFound
// if there is none.
func (s *TimeStore) Delete(idx time.Time) error {
	idx = idx.UTC().Truncate(time.Second)
	if err := s.setCachePtr(idx); err != nil {
		return err
	}
	if s.cachePtr >= len(s.cache) || !s.cache[s.cachePtr].Index.Equal(idx) {
		return errors.NewNotFound(idx)
	}
	s.cache = append(s.cache[:s.cachePtr], s.cache[s.cachePtr+1:]...)
	s.cacheDirty = true
	return nil
}

// DeleteRange removes all readings with start <= index < end. Use MinTime
// or MaxTime to leave either end open. Partitions emptied by the deletion
// are removed from disk when flushed.
func (s *TimeStore) DeleteRange(start, end time.Time) error {
	if s.firstDay >= s.lastDay {
		return nil
	}
	start = start.UTC()
	end = end.UTC()
	day := dayOrdinal(start)
	if day < s.firstDay {
		day = s.firstDay
	}
	lastDay := dayOrdinal(end)
	if lastDay > s.lastDay-1 {
		lastDay = s.lastDay - 1
	}
	for ; day <= lastDay; day++ {
		if err := s.ensureDay(day); err != nil {
			return err
		}
		lo := searchPartition(s.cache, start)
		hi := searchPartition(s.cache, end)
		if lo == hi {
			continue
		}
		s.cache = append(s.cache[:lo], s.cache[hi:]...)
		s.cachePtr = 0
		s.cacheDirty = true
	}
	// Bounds stay conservative; scans skip the emptied days.
	return nil
}

// Before returns the newest existing index strictly less than idx. It
// might not even be in the same year. ok is false if no such reading
// exists.
func (s *TimeStore) Before(idx time.Time) (time.Time, bool, error) {
	idx = idx.UTC()
	day := dayOrdinal(idx)
	if day > s.lastDay-1 {
		day = s.lastDay - 1
	}
	for day >= s.firstDay {
		if err := s.ensureDay(day); err != nil {
			return time.Time{}, false, err
		}
		for i := len(s.cache) - 1; i >= 0; i-- {
			if s.cache[i].Index.Before(idx) {
				s.cachePtr = i
				return s.cache[i].Index, true, nil
			}
		}
		day = s.cacheLo - 1
	}
	return time.Time{}, false, nil
}

// After returns the oldest existing index >= idx. ok is false if no such
// reading exists.
func (s *TimeStore) After(idx time.Time) (time.Time, bool, error) {
	idx = idx.UTC()
	day := dayOrdinal(idx)
	if day < s.firstDay {
		day = s.firstDay
	}
	for day < s.lastDay {
		if err := s.ensureDay(day); err != nil {
			return time.Time{}, false, err
		}
		for i := 0; i < len(s.cache); i++ {
			if !s.cache[i].Index.Before(idx) {
				s.cachePtr = i
				return s.cache[i].Index, true, nil
			}
		}
		day = s.cacheHi
	}
	return time.Time{}, false, nil
}

// Nearest returns the existing index numerically closest to idx. Ties
// resolve toward the earlier reading.
func (s *TimeStore) Nearest(idx time.Time) (time.Time, bool, error) {
	hi, hiOK, err := s.After(idx)
	if err != nil {
		return time.Time{}, false, err
	}
	lo, loOK, err := s.Before(idx)
	if err != nil {
		return time.Time{}, false, err
	}
	switch {
	case !hiOK:
		return lo, loOK, nil
	case !loOK:
		return hi, true, nil
	case hi.Sub(idx) < idx.Sub(lo):
		return hi, true, nil
	default:
		return lo, true, nil
	}
}
