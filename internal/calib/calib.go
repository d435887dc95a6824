// Package calib applies the calibration transform turning raw station
// readings into calibrated ones. The transform is pluggable; station owners
// with drifting sensors substitute their own.
package calib

import "github.com/wxlog/wxlog/internal/store"

// Calibrator converts one raw reading into a calibrated reading. The
// result must carry every raw field the rollup stages consume, plus the
// derived relative pressure.
type Calibrator interface {
	Calibrate(raw *store.Reading) *store.Reading
}

// Default is the standard calibrator: it passes every field through and
// derives rel_pressure by adding a fixed offset (the station's altitude
// correction) to the absolute pressure.
type Default struct {
	PressureOffset float64
}

// NewDefault creates a Default calibrator with the given pressure offset.
func NewDefault(pressureOffset float64) *Default {
	return &Default{PressureOffset: pressureOffset}
}

// Calibrate implements Calibrator.
func (c *Default) Calibrate(raw *store.Reading) *store.Reading {
	out := raw.Clone()
	if abs, ok := raw.Float64(store.FieldAbsPressure); ok {
		out.Set(store.FieldRelPressure, store.Float(abs+c.PressureOffset))
	}
	return out
}

// Func adapts a plain function to the Calibrator interface.
type Func func(raw *store.Reading) *store.Reading

// Calibrate implements Calibrator.
func (f Func) Calibrate(raw *store.Reading) *store.Reading { return f(raw) }
