// Package quantity provides dimensioned scalar values for the small set of
// physical dimensions the calculator cares about: angles (seeing, pixel scale)
// and durations (per-frame exposure time). A value carries its unit explicitly,
// so a duration can never be built from an angle and dimension mistakes are
// caught at the boundary where raw input is parsed, not deep inside a
// computation.
package quantity

import (
	"errors"
	"fmt"
	"time"

	"github.com/soniakeys/unit"
)

// ErrWrongDimension is returned when an input carries an explicit unit of the
// wrong physical dimension (e.g. "5m" where a time is required).
var ErrWrongDimension = errors.New("quantity has wrong physical dimension")

// ErrNotAQuantity is returned when an input is neither a bare number nor a
// recognizable dimensioned quantity.
var ErrNotAQuantity = errors.New("value is not numeric or a quantity")

// AngleUnit enumerates the supported angular units.
type AngleUnit int

const (
	Arcsec AngleUnit = iota
	Arcmin
	Degree
	Radian
)

func (u AngleUnit) String() string {
	switch u {
	case Arcsec:
		return "arcsec"
	case Arcmin:
		return "arcmin"
	case Degree:
		return "deg"
	case Radian:
		return "rad"
	}
	return "unknown"
}

// Angle is an angular quantity with an explicit unit.
type Angle struct {
	Value float64
	Unit  AngleUnit
}

// AngleFrom builds an Angle from a bare number, assuming arcseconds. This
// mirrors the convention that seeing given as a plain number is in arcsec.
func AngleFrom(v float64) Angle {
	return Angle{Value: v, Unit: Arcsec}
}

// Arcseconds returns the angle converted to arcseconds.
func (a Angle) Arcseconds() float64 {
	switch a.Unit {
	case Arcsec:
		return a.Value
	case Arcmin:
		return unit.AngleFromMin(a.Value).Sec()
	case Degree:
		return unit.AngleFromDeg(a.Value).Sec()
	case Radian:
		return unit.Angle(a.Value).Sec()
	}
	return a.Value
}

func (a Angle) String() string {
	return fmt.Sprintf("%g %s", a.Value, a.Unit)
}

// DurationUnit enumerates the supported time units.
type DurationUnit int

const (
	Seconds DurationUnit = iota
	Minutes
	Hours
	Milliseconds
)

func (u DurationUnit) String() string {
	switch u {
	case Seconds:
		return "s"
	case Minutes:
		return "min"
	case Hours:
		return "h"
	case Milliseconds:
		return "ms"
	}
	return "unknown"
}

// Duration is a time quantity with an explicit unit.
type Duration struct {
	Value float64
	Unit  DurationUnit
}

// DurationFrom builds a Duration from a bare number, assuming seconds. This
// mirrors the convention that a DIT given as a plain number is in seconds.
func DurationFrom(v float64) Duration {
	return Duration{Value: v, Unit: Seconds}
}

// FromDuration converts a time.Duration into a Duration in seconds.
func FromDuration(d time.Duration) Duration {
	return Duration{Value: d.Seconds(), Unit: Seconds}
}

// SecondsValue returns the duration converted to seconds.
func (d Duration) SecondsValue() float64 {
	switch d.Unit {
	case Seconds:
		return d.Value
	case Minutes:
		return d.Value * 60
	case Hours:
		return d.Value * 3600
	case Milliseconds:
		return d.Value / 1000
	}
	return d.Value
}

func (d Duration) String() string {
	return fmt.Sprintf("%g %s", d.Value, d.Unit)
}
