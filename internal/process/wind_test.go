package process

import (
	"math"
	"testing"
	"time"
)

func windTime(minute int) time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute)
}

func TestWindFilterSingleDirection(t *testing.T) {
	f := NewWindFilter()

	// Steady wind from the east (compass index 4) at 3 m/s.
	for i := 0; i < 12; i++ {
		f.Add(windTime(i*5), 3.0, 4.0)
	}

	speed, dir, ok := f.Result()
	if !ok {
		t.Fatal("Result: no data")
	}
	if math.Abs(speed-3.0) > 1e-9 {
		t.Errorf("speed = %v, want 3.0", speed)
	}
	if math.Abs(dir-4.0) > 1e-9 {
		t.Errorf("dir = %v, want 4.0 (east)", dir)
	}
	if m := f.Magnitude(); math.Abs(m-3.0) > 1e-9 {
		t.Errorf("magnitude = %v, want 3.0", m)
	}
}

func TestWindFilterOpposingWindsCancel(t *testing.T) {
	f := NewWindFilter()

	// Equal winds from north and south: the resultant vector cancels but
	// the scalar mean speed does not.
	f.Add(windTime(0), 4.0, 0.0)
	f.Add(windTime(5), 4.0, 8.0)

	speed, _, ok := f.Result()
	if !ok {
		t.Fatal("Result: no data")
	}
	if math.Abs(speed-4.0) > 1e-9 {
		t.Errorf("mean speed = %v, want 4.0", speed)
	}
	if m := f.Magnitude(); m > 1e-9 {
		t.Errorf("magnitude = %v, want ~0", m)
	}
}

func TestWindFilterNorthWraparound(t *testing.T) {
	f := NewWindFilter()

	// NNW (15) and NNE (1) average to north (0 or 16), not to 8 (south)
	// as naive numeric averaging would give.
	f.Add(windTime(0), 2.0, 15.0)
	f.Add(windTime(5), 2.0, 1.0)

	_, dir, ok := f.Result()
	if !ok {
		t.Fatal("Result: no data")
	}
	frac := math.Mod(dir, 16.0)
	if math.Min(frac, 16.0-frac) > 1e-6 {
		t.Errorf("dir = %v, want north (0 mod 16)", dir)
	}
}

func TestWindFilterDegrees(t *testing.T) {
	f := NewWindFilter()
	f.AddDegrees(windTime(0), 1.0, 90.0)

	_, dir, ok := f.Result()
	if !ok {
		t.Fatal("Result: no data")
	}
	if math.Abs(dir-4.0) > 1e-9 {
		t.Errorf("dir = %v, want 4.0 for 90 degrees", dir)
	}
}

func TestWindFilterDecayWeightsRecent(t *testing.T) {
	f := NewWindFilterDecay(0.5)

	// Older sample 1 m/s, newer sample 3 m/s at the reference spacing.
	// With decay 0.5 the newer sample has double weight: (1 + 2*3)/3.
	f.Add(windTime(0), 1.0, 0.0)
	f.Add(windTime(5), 3.0, 0.0)

	speed, _, ok := f.Result()
	if !ok {
		t.Fatal("Result: no data")
	}
	want := (1.0 + 2.0*3.0) / 3.0
	if math.Abs(speed-want) > 1e-9 {
		t.Errorf("speed = %v, want %v", speed, want)
	}
}

func TestWindFilterDecayIntervalScaling(t *testing.T) {
	// A ten-minute gap at decay 0.5 scales the weight by 1/0.5^2 = 4.
	f := NewWindFilterDecay(0.5)
	f.Add(windTime(0), 1.0, 0.0)
	f.Add(windTime(10), 3.0, 0.0)

	speed, _, ok := f.Result()
	if !ok {
		t.Fatal("Result: no data")
	}
	want := (1.0 + 4.0*3.0) / 5.0
	if math.Abs(speed-want) > 1e-9 {
		t.Errorf("speed = %v, want %v", speed, want)
	}
}

func TestWindFilterEmpty(t *testing.T) {
	f := NewWindFilter()
	if _, _, ok := f.Result(); ok {
		t.Error("Result on empty filter should report no data")
	}
	if m := f.Magnitude(); m != 0 {
		t.Errorf("Magnitude on empty filter = %v, want 0", m)
	}
}
