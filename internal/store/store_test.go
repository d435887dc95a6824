package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wxlog/wxlog/internal/errors"
)

func testSchema() *Schema {
	return NewSchema("test",
		Field{FieldIndex, KindTime},
		Field{FieldTempOut, KindFloat},
		Field{FieldHumOut, KindInt},
		Field{FieldWindGustT, KindTime},
	)
}

func mustOpen(t *testing.T, dir string) *TimeStore {
	t.Helper()
	s, err := Open(dir, testSchema())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	idx, err := time.ParseInLocation(TimeFormat, value, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return idx
}

func reading(idx time.Time, temp float64) *Reading {
	r := NewReading(idx)
	r.Set(FieldTempOut, Float(temp))
	return r
}

func TestStoreSetGet(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	idx := at(t, "2024-06-01 12:00:00")
	r := reading(idx, 21.5)
	r.Set(FieldHumOut, Int(55))

	if err := s.Set(idx, r); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(idx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v, ok := got.Float64(FieldTempOut); !ok || v != 21.5 {
		t.Errorf("temp_out = %v, %v; want 21.5, true", v, ok)
	}
	if v, ok := got.Int64(FieldHumOut); !ok || v != 55 {
		t.Errorf("hum_out = %v, %v; want 55, true", v, ok)
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	_, err := s.Get(at(t, "2024-06-01 12:00:00"))
	if !errors.IsNotFound(err) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}
}

func TestStoreOverwrite(t *testing.T) {
	s := mustOpen(t, t.TempDir())
	idx := at(t, "2024-06-01 12:00:00")

	if err := s.Set(idx, reading(idx, 10.0)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(idx, reading(idx, 11.0)); err != nil {
		t.Fatalf("Set again: %v", err)
	}

	got, err := s.Get(idx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v, _ := got.Float64(FieldTempOut); v != 11.0 {
		t.Errorf("temp_out = %v, want 11.0 after overwrite", v)
	}
}

func TestStorePersistence(t *testing.T) {
	dir := t.TempDir()
	idx := at(t, "2024-06-01 12:00:00")

	s := mustOpen(t, dir)
	gt := at(t, "2024-06-01 11:47:30")
	r := reading(idx, 17.25)
	r.Set(FieldWindGustT, Time(gt))
	if err := s.Set(idx, r); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Partition file lands in the year/month tree.
	path := filepath.Join(dir, "2024", "2024-06", "2024-06-01.txt")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("partition file: %v", err)
	}

	s2 := mustOpen(t, dir)
	got, err := s2.Get(idx)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if v, _ := got.Float64(FieldTempOut); v != 17.25 {
		t.Errorf("temp_out = %v, want 17.25", v)
	}
	if v, ok := got.Timestamp(FieldWindGustT); !ok || !v.Equal(gt) {
		t.Errorf("wind_gust_t = %v, %v; want %v", v, ok, gt)
	}
}

func TestStoreOrderedInsertion(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	// Insert out of order; iteration must come back sorted.
	times := []string{
		"2024-06-01 12:10:00",
		"2024-06-01 12:00:00",
		"2024-06-01 12:05:00",
	}
	for _, ts := range times {
		idx := at(t, ts)
		if err := s.Set(idx, reading(idx, 1.0)); err != nil {
			t.Fatalf("Set %s: %v", ts, err)
		}
	}

	got, err := s.Range(MinTime, MaxTime).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Index.Before(got[i].Index) {
			t.Errorf("readings out of order: %v >= %v", got[i-1].Index, got[i].Index)
		}
	}
}

func TestStoreBeforeAfter(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	// Spread over three days with a gap, so the walk crosses partitions.
	times := []time.Time{
		at(t, "2024-06-01 23:55:00"),
		at(t, "2024-06-02 00:05:00"),
		at(t, "2024-06-04 08:00:00"),
	}
	for _, idx := range times {
		if err := s.Set(idx, reading(idx, 1.0)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	// Before is strictly less.
	got, ok, err := s.Before(times[1])
	if err != nil || !ok {
		t.Fatalf("Before: %v, %v", ok, err)
	}
	if !got.Equal(times[0]) {
		t.Errorf("Before = %v, want %v", got, times[0])
	}

	// Before across the empty day gap.
	got, ok, err = s.Before(times[2])
	if err != nil || !ok {
		t.Fatalf("Before across gap: %v, %v", ok, err)
	}
	if !got.Equal(times[1]) {
		t.Errorf("Before = %v, want %v", got, times[1])
	}

	// After is >=.
	got, ok, err = s.After(times[1])
	if err != nil || !ok {
		t.Fatalf("After: %v, %v", ok, err)
	}
	if !got.Equal(times[1]) {
		t.Errorf("After = %v, want %v (inclusive)", got, times[1])
	}

	got, ok, err = s.After(times[1].Add(time.Second))
	if err != nil || !ok {
		t.Fatalf("After+1s: %v, %v", ok, err)
	}
	if !got.Equal(times[2]) {
		t.Errorf("After = %v, want %v", got, times[2])
	}

	// Off both ends.
	if _, ok, err = s.Before(times[0]); err != nil || ok {
		t.Errorf("Before first = %v, %v; want false", ok, err)
	}
	if _, ok, err = s.After(times[2].Add(time.Second)); err != nil || ok {
		t.Errorf("After last = %v, %v; want false", ok, err)
	}
}

func TestStoreNearest(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	lo := at(t, "2024-06-01 12:00:00")
	hi := at(t, "2024-06-01 12:10:00")
	for _, idx := range []time.Time{lo, hi} {
		if err := s.Set(idx, reading(idx, 1.0)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	got, ok, err := s.Nearest(at(t, "2024-06-01 12:04:00"))
	if err != nil || !ok {
		t.Fatalf("Nearest: %v, %v", ok, err)
	}
	if !got.Equal(lo) {
		t.Errorf("Nearest = %v, want %v", got, lo)
	}

	got, _, _ = s.Nearest(at(t, "2024-06-01 12:06:00"))
	if !got.Equal(hi) {
		t.Errorf("Nearest = %v, want %v", got, hi)
	}

	// Exact midpoint resolves toward the earlier reading.
	got, _, _ = s.Nearest(at(t, "2024-06-01 12:05:00"))
	if !got.Equal(lo) {
		t.Errorf("Nearest at midpoint = %v, want %v", got, lo)
	}
}

func TestStoreDelete(t *testing.T) {
	s := mustOpen(t, t.TempDir())
	idx := at(t, "2024-06-01 12:00:00")

	if err := s.Set(idx, reading(idx, 1.0)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(idx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(idx); !errors.IsNotFound(err) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(idx); !errors.IsNotFound(err) {
		t.Errorf("Delete again: err = %v, want ErrNotFound", err)
	}
}

func TestStoreDeleteRange(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	var times []time.Time
	for _, ts := range []string{
		"2024-06-01 10:00:00",
		"2024-06-01 20:00:00",
		"2024-06-02 10:00:00",
		"2024-06-03 10:00:00",
	} {
		idx := at(t, ts)
		times = append(times, idx)
		if err := s.Set(idx, reading(idx, 1.0)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	// Delete forward from the second reading.
	if err := s.DeleteRange(times[1], MaxTime); err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}

	got, err := s.Range(MinTime, MaxTime).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 1 || !got[0].Index.Equal(times[0]) {
		t.Fatalf("remaining = %v, want only %v", got, times[0])
	}
}

func TestStoreEmptyPartitionRemoved(t *testing.T) {
	dir := t.TempDir()
	s := mustOpen(t, dir)
	idx := at(t, "2024-06-01 12:00:00")

	if err := s.Set(idx, reading(idx, 1.0)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	path := filepath.Join(dir, "2024", "2024-06", "2024-06-01.txt")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("partition should exist: %v", err)
	}

	if err := s.Delete(idx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("empty partition file should be removed, stat err = %v", err)
	}
}

func TestStoreFlushRetriesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	s := mustOpen(t, dir)
	idx := at(t, "2024-06-01 12:00:00")

	if err := s.Set(idx, reading(idx, 18.5)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Block the year directory with a regular file so the save fails.
	obstruction := filepath.Join(dir, "2024")
	if err := os.WriteFile(obstruction, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Flush(); err == nil {
		t.Fatal("Flush with blocked directory should fail")
	}

	// The partition must stay dirty, so a retry actually writes it.
	if err := os.Remove(obstruction); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush retry: %v", err)
	}

	s2 := mustOpen(t, dir)
	got, err := s2.Get(idx)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if v, _ := got.Float64(FieldTempOut); v != 18.5 {
		t.Errorf("temp_out = %v, want 18.5", v)
	}
}

func TestStoreMalformedPartition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2024", "2024-06", "2024-06-01.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("not a timestamp,1.0,50,\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := mustOpen(t, dir)
	_, err := s.Get(at(t, "2024-06-01 12:00:00"))
	if !errors.Is(err, errors.ErrMalformedPartition) {
		t.Fatalf("err = %v, want ErrMalformedPartition", err)
	}
}

func TestStoreBounds(t *testing.T) {
	dir := t.TempDir()
	s := mustOpen(t, dir)

	if _, _, ok := s.Bounds(); ok {
		t.Fatal("Bounds on empty store should report no data")
	}

	first := at(t, "2024-06-01 12:00:00")
	last := at(t, "2024-06-03 12:00:00")
	for _, idx := range []time.Time{first, last} {
		if err := s.Set(idx, reading(idx, 1.0)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Bounds are rediscovered from file names on reopen.
	s2 := mustOpen(t, dir)
	lo, hi, ok := s2.Bounds()
	if !ok {
		t.Fatal("Bounds should report data")
	}
	if want := at(t, "2024-06-01 00:00:00"); !lo.Equal(want) {
		t.Errorf("first bound = %v, want %v", lo, want)
	}
	if want := at(t, "2024-06-04 00:00:00"); !hi.Equal(want) {
		t.Errorf("last bound = %v, want %v", hi, want)
	}
}

func TestStoreEvictionRoundTrip(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	// Writing three distinct days forces the first day's partition out of
	// the cache twice; re-reading it must return exactly what was written.
	days := []time.Time{
		at(t, "2024-06-01 08:00:00"),
		at(t, "2024-06-02 08:00:00"),
		at(t, "2024-06-03 08:00:00"),
	}
	for i, idx := range days {
		r := reading(idx, 10.0+float64(i))
		r.Set(FieldHumOut, Int(int64(60+i)))
		if err := s.Set(idx, r); err != nil {
			t.Fatalf("Set day %d: %v", i, err)
		}
	}

	got, err := s.Get(days[0])
	if err != nil {
		t.Fatalf("Get day 1 after eviction: %v", err)
	}
	if v, _ := got.Float64(FieldTempOut); v != 10.0 {
		t.Errorf("temp_out = %v, want 10.0", v)
	}
	if v, _ := got.Int64(FieldHumOut); v != 60 {
		t.Errorf("hum_out = %v, want 60", v)
	}

	// And the later days survive the walk back.
	for i := 1; i < 3; i++ {
		got, err := s.Get(days[i])
		if err != nil {
			t.Fatalf("Get day %d: %v", i+1, err)
		}
		if v, _ := got.Float64(FieldTempOut); v != 10.0+float64(i) {
			t.Errorf("day %d temp_out = %v, want %v", i+1, v, 10.0+float64(i))
		}
	}
}

func TestStoreSequentialScanAcrossDays(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	// Three days of five-minute data, written in order.
	start := at(t, "2024-06-01 00:00:00")
	var want int
	for d := 0; d < 3; d++ {
		for m := 0; m < 24*60; m += 5 {
			idx := start.AddDate(0, 0, d).Add(time.Duration(m) * time.Minute)
			if err := s.Set(idx, reading(idx, float64(m))); err != nil {
				t.Fatalf("Set: %v", err)
			}
			want++
		}
	}

	cur := s.Range(MinTime, MaxTime)
	var got int
	prev := time.Time{}
	for {
		r, err := cur.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if r == nil {
			break
		}
		if !prev.Before(r.Index) {
			t.Fatalf("scan out of order at %v", r.Index)
		}
		prev = r.Index
		got++
	}
	if got != want {
		t.Errorf("scanned %d readings, want %d", got, want)
	}
}

func TestStoreRangeSubset(t *testing.T) {
	s := mustOpen(t, t.TempDir())

	start := at(t, "2024-06-01 00:00:00")
	for m := 0; m < 60; m += 5 {
		idx := start.Add(time.Duration(m) * time.Minute)
		if err := s.Set(idx, reading(idx, 1.0)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	// [00:10, 00:30) covers 00:10, 00:15, 00:20, 00:25.
	got, err := s.Range(start.Add(10*time.Minute), start.Add(30*time.Minute)).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if !got[0].Index.Equal(start.Add(10 * time.Minute)) {
		t.Errorf("first = %v, want %v", got[0].Index, start.Add(10*time.Minute))
	}
	if !got[3].Index.Equal(start.Add(25 * time.Minute)) {
		t.Errorf("last = %v, want %v", got[3].Index, start.Add(25*time.Minute))
	}
}

func TestStoreTrailingFieldsAbsent(t *testing.T) {
	// Older partition files may carry fewer fields than the schema; the
	// missing trailing fields read back as absent.
	dir := t.TempDir()
	path := filepath.Join(dir, "2024", "2024-06", "2024-06-01.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("2024-06-01 12:00:00,21.5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := mustOpen(t, dir)
	got, err := s.Get(at(t, "2024-06-01 12:00:00"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v, ok := got.Float64(FieldTempOut); !ok || v != 21.5 {
		t.Errorf("temp_out = %v, %v; want 21.5", v, ok)
	}
	if _, ok := got.Int64(FieldHumOut); ok {
		t.Error("hum_out should be absent")
	}
	if _, ok := got.Timestamp(FieldWindGustT); ok {
		t.Error("wind_gust_t should be absent")
	}
}
