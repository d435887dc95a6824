package process

import "time"

// Small stateful reducers used by the accumulators. Each bucket gets fresh
// reducers, so there is no stale state to reset.

// Average computes the mean of the values added to it.
type Average struct {
	acc   float64
	count int
}

// Add folds one value into the average.
func (a *Average) Add(v float64) {
	a.acc += v
	a.count++
}

// Result returns the mean, with ok false when nothing was added.
func (a *Average) Result() (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	return a.acc / float64(a.count), true
}

// Minimum tracks the smallest value and the timestamp it occurred at.
// Later equal values win, matching the historical convention of reporting
// the most recent occurrence of a tied minimum.
type Minimum struct {
	value float64
	at    time.Time
	set   bool
}

// Add folds one timestamped value into the minimum.
func (m *Minimum) Add(v float64, at time.Time) {
	if !m.set || v <= m.value {
		m.value = v
		m.at = at
		m.set = true
	}
}

// Result returns the minimum and its timestamp, with ok false when nothing
// was added.
func (m *Minimum) Result() (float64, time.Time, bool) {
	if !m.set {
		return 0, time.Time{}, false
	}
	return m.value, m.at, true
}

// Maximum tracks the largest value and the timestamp it occurred at.
// Earlier equal values win.
type Maximum struct {
	value float64
	at    time.Time
	set   bool
}

// Add folds one timestamped value into the maximum.
func (m *Maximum) Add(v float64, at time.Time) {
	if !m.set || v > m.value {
		m.value = v
		m.at = at
		m.set = true
	}
}

// Result returns the maximum and its timestamp, with ok false when nothing
// was added.
func (m *Maximum) Result() (float64, time.Time, bool) {
	if !m.set {
		return 0, time.Time{}, false
	}
	return m.value, m.at, true
}
