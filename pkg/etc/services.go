package etc

import (
	"context"

	"github.com/telescope-tools/etcalc/pkg/bandpass"
)

// FluxService converts a target brightness in a given filter into an expected
// photon flux, in photons per second per square meter of collecting area.
type FluxService interface {
	PhotonFlux(ctx context.Context, filter string, b Brightness) (float64, error)
}

// SkyService returns the expected sky background photon flux for a filter and
// wavelength window under the given observing conditions, in photons per
// second per square meter per square arcsecond of sky.
//
// The params map is forwarded verbatim from the observing condition; its keys
// are interpreted by the service, not validated here.
type SkyService interface {
	BackgroundFlux(ctx context.Context, filter string, window bandpass.Window, params map[string]float64) (float64, error)
}

// TransmissionService returns the transmission curve of a named filter for an
// observatory/instrument pair.
type TransmissionService interface {
	Curve(ctx context.Context, observatory, instrument, filter string) (bandpass.Curve, error)
}
