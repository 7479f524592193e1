// Package bandpass extracts an effective wavelength window from a filter
// transmission curve. The window is the wavelength range over which throughput
// exceeds a fixed fraction of the curve's peak, which is a crude but standard
// approximation of a photometric filter's bandpass.
package bandpass

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Threshold is the fraction of peak throughput that bounds the effective
// bandpass.
const Threshold = 0.2

// Curve is a filter transmission curve: a monotonically increasing wavelength
// axis in Angstroms and the fractional throughput sampled at each wavelength.
type Curve struct {
	Wavelengths []float64 `msgpack:"wavelengths"` // Angstrom
	Throughput  []float64 `msgpack:"throughput"`  // 0..1
}

// Window is the effective wavelength range of a filter.
type Window struct {
	MinAngstrom float64
	MaxAngstrom float64
}

// MinNm returns the lower bound in nanometers.
func (w Window) MinNm() float64 { return w.MinAngstrom / 10 }

// MaxNm returns the upper bound in nanometers.
func (w Window) MaxNm() float64 { return w.MaxAngstrom / 10 }

var errEmptyCurve = errors.New("transmission curve is empty")

// Validate checks basic curve sanity: equal axis lengths and a strictly
// non-decreasing wavelength axis.
func (c Curve) Validate() error {
	if len(c.Wavelengths) == 0 || len(c.Throughput) == 0 {
		return errEmptyCurve
	}
	if len(c.Wavelengths) != len(c.Throughput) {
		return fmt.Errorf("wavelength axis has %d samples, throughput has %d",
			len(c.Wavelengths), len(c.Throughput))
	}
	for i := 1; i < len(c.Wavelengths); i++ {
		if c.Wavelengths[i] < c.Wavelengths[i-1] {
			return fmt.Errorf("wavelength axis not monotonic at sample %d", i)
		}
	}
	return nil
}

// EffectiveWindow returns the wavelength range over which throughput exceeds
// Threshold times the peak throughput.
func (c Curve) EffectiveWindow() (Window, error) {
	if err := c.Validate(); err != nil {
		return Window{}, err
	}

	peak := floats.Max(c.Throughput)
	if peak <= 0 {
		return Window{}, fmt.Errorf("curve has no positive throughput")
	}
	cut := Threshold * peak

	first, last := -1, -1
	for i, t := range c.Throughput {
		if t > cut {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		// Unreachable when peak > 0, kept for safety
		return Window{}, fmt.Errorf("no samples above %g of peak", Threshold)
	}

	return Window{
		MinAngstrom: c.Wavelengths[first],
		MaxAngstrom: c.Wavelengths[last],
	}, nil
}
