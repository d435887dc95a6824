package calib

import (
	"testing"
	"time"

	"github.com/wxlog/wxlog/internal/store"
)

func TestDefaultDerivesRelativePressure(t *testing.T) {
	raw := store.NewReading(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))
	raw.Set(store.FieldAbsPressure, store.Float(1001.3))
	raw.Set(store.FieldTempOut, store.Float(15.0))

	out := NewDefault(7.5).Calibrate(raw)

	if v, ok := out.Float64(store.FieldRelPressure); !ok || v != 1008.8 {
		t.Errorf("rel_pressure = %v, %v; want 1008.8", v, ok)
	}
	// Raw fields pass through untouched.
	if v, ok := out.Float64(store.FieldTempOut); !ok || v != 15.0 {
		t.Errorf("temp_out = %v, %v; want 15.0", v, ok)
	}
	// The input reading is not mutated.
	if raw.Has(store.FieldRelPressure) {
		t.Error("Calibrate must not mutate its input")
	}
}

func TestDefaultMissingPressure(t *testing.T) {
	raw := store.NewReading(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))
	raw.Set(store.FieldTempOut, store.Float(15.0))

	out := NewDefault(7.5).Calibrate(raw)
	if out.Has(store.FieldRelPressure) {
		t.Error("rel_pressure should be absent when abs_pressure is")
	}
}

func TestFuncAdapter(t *testing.T) {
	called := false
	f := Func(func(raw *store.Reading) *store.Reading {
		called = true
		return raw.Clone()
	})
	f.Calibrate(store.NewReading(time.Now()))
	if !called {
		t.Error("Func adapter did not invoke the function")
	}
}
