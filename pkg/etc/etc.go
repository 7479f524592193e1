// Package etc implements an exposure time calculator for point-source
// aperture photometry with a near-infrared imager. It combines target flux,
// sky background, dark current and read noise into a single noise budget and
// reports the signal-to-noise ratio per target brightness.
//
// Target flux, sky background and filter transmission come from external
// services behind the FluxService, SkyService and TransmissionService
// interfaces; the calculator itself is pure computation.
package etc

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/telescope-tools/etcalc/pkg/bandpass"
	"github.com/telescope-tools/etcalc/pkg/quantity"
)

// ObservingCondition describes the atmosphere for subsequent SNR queries.
// Extra holds additional sky-model parameters (moon separation, airglow, ...)
// that are forwarded verbatim to the sky-background service; unknown keys are
// only rejected by the service itself.
type ObservingCondition struct {
	Seeing quantity.Angle
	Extra  map[string]float64
}

// Airmass returns the airmass from the extra parameters, or 0 when absent.
func (oc ObservingCondition) Airmass() float64 {
	return oc.Extra["airmass"]
}

// Calculator computes SNR estimates for one instrument. A calculator is
// constructed once and reused across filters and exposures; it is not safe
// for concurrent use.
type Calculator struct {
	instrument Instrument
	flux       FluxService
	sky        SkyService
	trans      TransmissionService

	cond    ObservingCondition
	condSet bool
	aper    float64 // arcsec^2, derived from seeing at SetObservingCondition

	// windows caches effective bandpass per filter name; the transmission
	// curve of a filter does not change within a session.
	windows map[string]bandpass.Window

	last      *Result
	lastValid bool
}

// New builds a calculator for the given instrument backed by the three
// external lookup services.
func New(instrument Instrument, flux FluxService, sky SkyService, trans TransmissionService) *Calculator {
	return &Calculator{
		instrument: instrument,
		flux:       flux,
		sky:        sky,
		trans:      trans,
		windows:    make(map[string]bandpass.Window),
	}
}

// Instrument returns the instrument constants the calculator was built with.
func (c *Calculator) Instrument() Instrument {
	return c.instrument
}

// SetObservingCondition stores the seeing and any extra sky-model parameters
// for all subsequent SNR queries, and derives the photometric aperture from
// the seeing: a circle of radius equal to the seeing FWHM, area pi*seeing^2.
// The aperture is recomputed only here, never implicitly.
func (c *Calculator) SetObservingCondition(cond ObservingCondition) {
	c.cond = cond
	s := cond.Seeing.Arcseconds()
	c.aper = math.Pi * s * s
	c.condSet = true
}

// SNR computes the signal-to-noise ratio for each brightness value through
// the configured filter, with ndit frames of dit each. The returned result
// preserves brightness order. On any error the previously computed result is
// left in place but marked stale; LastResult reports the distinction.
func (c *Calculator) SNR(ctx context.Context, filter string, brightness []Brightness, ndit int, dit quantity.Duration) (*Result, error) {
	res, err := c.compute(ctx, filter, brightness, ndit, dit)
	if err != nil {
		// A failed call must not leave plausible-looking numbers behind.
		c.lastValid = false
		return nil, err
	}
	c.last = res
	c.lastValid = true
	return res, nil
}

// SNROne is the scalar convenience form of SNR for a single brightness.
func (c *Calculator) SNROne(ctx context.Context, filter string, b Brightness, ndit int, dit quantity.Duration) (float64, error) {
	res, err := c.SNR(ctx, filter, []Brightness{b}, ndit, dit)
	if err != nil {
		return 0, err
	}
	return res.SNR[0], nil
}

// compute performs the whole noise budget into a fresh Result, touching no
// calculator state besides the bandpass cache. All-or-nothing: the caller
// installs the result only when no step failed.
func (c *Calculator) compute(ctx context.Context, filter string, brightness []Brightness, ndit int, dit quantity.Duration) (*Result, error) {
	if !c.instrument.Supports(filter) {
		return nil, &ConfigError{Filter: filter, Valid: c.instrument.SupportedFilters}
	}
	if !c.condSet {
		return nil, ErrConditionNotSet
	}
	if ndit < 1 {
		return nil, fmt.Errorf("ndit must be a positive integer, got %d", ndit)
	}
	ditSec := dit.SecondsValue()
	if ditSec <= 0 {
		return nil, fmt.Errorf("dit must be positive, got %v", dit)
	}
	if len(brightness) == 0 {
		return nil, fmt.Errorf("at least one brightness value is required")
	}

	exposure := ditSec * float64(ndit)

	// Target signal electrons, one flux lookup per brightness element.
	signal := make([]float64, len(brightness))
	for i, b := range brightness {
		f, err := c.flux.PhotonFlux(ctx, filter, b)
		if err != nil {
			return nil, &ServiceError{Service: "flux", Err: err}
		}
		signal[i] = f * c.instrument.CollectionArea * c.instrument.QuantumEfficiency * exposure
	}

	// One bandpass lookup per filter per session.
	window, err := c.effectiveWindow(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Sky electrons inside the aperture. The sky flux is per unit sky area;
	// multiplying by the aperture area consumes that dimension.
	skyFlux, err := c.sky.BackgroundFlux(ctx, filter, window, c.cond.Extra)
	if err != nil {
		return nil, &ServiceError{Service: "sky", Err: err}
	}
	sky := skyFlux * c.instrument.QuantumEfficiency * exposure * c.instrument.CollectionArea * c.aper

	nPix := c.aper / (c.instrument.PixelScale * c.instrument.PixelScale)
	dark := c.instrument.DarkCurrent * nPix * exposure

	// Read noise adds in quadrature once per frame, so the variance grows
	// with ndit rather than with total exposure time.
	readVar := c.instrument.ReadNoise * c.instrument.ReadNoise * nPix * float64(ndit)

	noise := make([]float64, len(brightness))
	snr := make([]float64, len(brightness))
	for i, sig := range signal {
		noise[i] = math.Sqrt(sig + sky + dark + readVar)
		snr[i] = sig / noise[i]
	}

	return &Result{
		Filter:       filter,
		Seeing:       c.cond.Seeing.Arcseconds(),
		Airmass:      c.cond.Airmass(),
		ComputedAt:   time.Now().UTC(),
		Brightness:   append([]Brightness(nil), brightness...),
		NDIT:         ndit,
		DIT:          ditSec,
		ExposureTime: exposure,
		ApertureArea: c.aper,
		PixelCount:   nPix,
		Signal:       signal,
		Noise:        noise,
		SNR:          snr,

		Sky:               sky,
		Dark:              dark,
		ReadNoiseVariance: readVar,
		SkyWindowMinNm:    window.MinNm(),
		SkyWindowMaxNm:    window.MaxNm(),
	}, nil
}

// effectiveWindow returns the filter's effective bandpass, querying the
// transmission service at most once per filter name.
func (c *Calculator) effectiveWindow(ctx context.Context, filter string) (bandpass.Window, error) {
	if w, ok := c.windows[filter]; ok {
		return w, nil
	}
	curve, err := c.trans.Curve(ctx, c.instrument.Observatory, c.instrument.Name, filter)
	if err != nil {
		return bandpass.Window{}, &ServiceError{Service: "transmission", Err: err}
	}
	w, err := curve.EffectiveWindow()
	if err != nil {
		return bandpass.Window{}, &ServiceError{Service: "transmission", Err: err}
	}
	c.windows[filter] = w
	return w, nil
}

// LastResult returns the most recently computed result and whether it is
// still valid. A result goes stale when a later SNR call fails partway, so
// reporting callers never mistake leftovers for fresh numbers.
func (c *Calculator) LastResult() (*Result, bool) {
	return c.last, c.last != nil && c.lastValid
}

// Summary writes the report of the most recent successful computation.
// It returns ErrNotComputed before the first successful SNR call and when the
// last call failed.
func (c *Calculator) Summary(w io.Writer) error {
	res, ok := c.LastResult()
	if !ok {
		return ErrNotComputed
	}
	res.WriteSummary(w)
	return nil
}
