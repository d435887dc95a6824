package process

import (
	"math"
	"testing"
	"time"

	"github.com/wxlog/wxlog/internal/store"
	"github.com/wxlog/wxlog/internal/timeutil"
)

func TestDayAccTemperatureSplit(t *testing.T) {
	acc := NewDayAcc(timeutil.NewBucketer(time.UTC, 21, false))

	// Day window 2024-06-01 21:00 to 2024-06-02 21:00.
	night := store.NewReading(time.Date(2024, time.June, 2, 3, 0, 0, 0, time.UTC))
	night.Set(store.FieldTempOut, store.Float(8.0))
	acc.AddRaw(night)

	day := store.NewReading(time.Date(2024, time.June, 2, 14, 0, 0, 0, time.UTC))
	day.Set(store.FieldTempOut, store.Float(22.0))
	acc.AddRaw(day)

	// A cold daytime sample must not become the minimum: minima only come
	// from nighttime samples.
	coldDay := store.NewReading(time.Date(2024, time.June, 2, 9, 30, 0, 0, time.UTC))
	coldDay.Set(store.FieldTempOut, store.Float(5.0))
	acc.AddRaw(coldDay)

	hourly := store.NewReading(time.Date(2024, time.June, 2, 20, 0, 0, 0, time.UTC))
	hourly.Set(store.FieldRain, store.Float(0.0))
	acc.AddHourly(hourly)

	start := time.Date(2024, time.June, 1, 21, 0, 0, 0, time.UTC)
	out := acc.Result(start)
	if out == nil {
		t.Fatal("Result: nil")
	}

	if v, _ := out.Float64(store.FieldTempOut + "_min"); v != 8.0 {
		t.Errorf("temp_out_min = %v, want 8.0 (nighttime only)", v)
	}
	if v, _ := out.Float64(store.FieldTempOut + "_max"); v != 22.0 {
		t.Errorf("temp_out_max = %v, want 22.0", v)
	}
	if at, ok := out.Timestamp(store.FieldTempOut + "_min_t"); !ok || !at.Equal(night.Index) {
		t.Errorf("temp_out_min_t = %v, %v; want %v", at, ok, night.Index)
	}
	wantAve := (8.0 + 22.0 + 5.0) / 3.0
	if v, _ := out.Float64(store.FieldTempOut + "_ave"); math.Abs(v-wantAve) > 1e-9 {
		t.Errorf("temp_out_ave = %v, want %v", v, wantAve)
	}

	if v, ok := out.Timestamp(store.FieldStart); !ok || !v.Equal(start) {
		t.Errorf("start = %v, %v; want %v", v, ok, start)
	}
	if !out.Index.Equal(hourly.Index) {
		t.Errorf("index = %v, want last hourly %v", out.Index, hourly.Index)
	}
}

func TestDayAccPressureMinMax(t *testing.T) {
	acc := NewDayAcc(timeutil.NewBucketer(time.UTC, 21, false))
	base := time.Date(2024, time.June, 2, 10, 0, 0, 0, time.UTC)

	// Pressure min/max take any time of day.
	for i, p := range []float64{1013.2, 1010.8, 1015.5} {
		r := store.NewReading(base.Add(time.Duration(i) * time.Hour))
		r.Set(store.FieldRelPressure, store.Float(p))
		acc.AddRaw(r)
	}
	hourly := store.NewReading(base.Add(3 * time.Hour))
	acc.AddHourly(hourly)

	out := acc.Result(base)
	if v, _ := out.Float64(store.FieldRelPressure + "_min"); v != 1010.8 {
		t.Errorf("rel_pressure_min = %v, want 1010.8", v)
	}
	if v, _ := out.Float64(store.FieldRelPressure + "_max"); v != 1015.5 {
		t.Errorf("rel_pressure_max = %v, want 1015.5", v)
	}
}

func TestDayAccRainFromHourly(t *testing.T) {
	acc := NewDayAcc(timeutil.NewBucketer(time.UTC, 21, false))
	base := time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)

	for i, rain := range []float64{0.3, 1.2, 0.0} {
		h := store.NewReading(base.Add(time.Duration(i) * time.Hour))
		h.Set(store.FieldRain, store.Float(rain))
		acc.AddHourly(h)
	}

	out := acc.Result(base)
	if v, _ := out.Float64(store.FieldRain); math.Abs(v-1.5) > 1e-9 {
		t.Errorf("rain = %v, want 1.5", v)
	}
}

func TestDayAccNoHourlyNoResult(t *testing.T) {
	acc := NewDayAcc(timeutil.NewBucketer(time.UTC, 21, false))

	r := store.NewReading(time.Date(2024, time.June, 2, 10, 0, 0, 0, time.UTC))
	r.Set(store.FieldTempOut, store.Float(20.0))
	acc.AddRaw(r)

	if out := acc.Result(r.Index); out != nil {
		t.Error("Result should be nil when the day has no hourly records")
	}
}

func TestDayAccSunFieldsOnlyWhenPresent(t *testing.T) {
	bucket := timeutil.NewBucketer(time.UTC, 21, false)
	base := time.Date(2024, time.June, 2, 12, 0, 0, 0, time.UTC)

	acc := NewDayAcc(bucket)
	r := store.NewReading(base)
	r.Set(store.FieldTempOut, store.Float(20.0))
	acc.AddRaw(r)
	acc.AddHourly(store.NewReading(base))

	out := acc.Result(base)
	if out.Has(store.FieldIlluminance + "_max") {
		t.Error("illuminance fields should be absent without a solar sensor")
	}

	// Reset must also clear the solar flag.
	sun := store.NewReading(base)
	sun.Set(store.FieldIlluminance, store.Float(45000.0))
	sun.Set(store.FieldUV, store.Int(5))
	acc.AddRaw(sun)
	acc.Reset()
	acc.AddRaw(r)
	acc.AddHourly(store.NewReading(base))
	out = acc.Result(base)
	if out.Has(store.FieldIlluminance + "_max") {
		t.Error("solar flag should not survive Reset")
	}
}
