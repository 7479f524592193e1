package etc

import "math"

// Instrument holds the fixed constants of an imaging instrument. Values are
// set at construction and never mutated afterwards.
type Instrument struct {
	Observatory string
	Name        string

	CollectionArea    float64 // m^2, effective (obstruction and reflectance applied)
	PixelScale        float64 // arcsec per pixel
	DarkCurrent       float64 // e-/s per pixel^2
	ReadNoise         float64 // e- RMS per pixel^2 per frame
	QuantumEfficiency float64 // e- per photon

	SupportedFilters []string
}

// DefaultHAWKI returns the constants for the HAWK-I imager on the VLT at
// Paranal.
//
// The collection area assumes a 20% obstructed aperture and 85% mirror
// reflectance; detector figures follow the published instrument
// characteristics.
func DefaultHAWKI() Instrument {
	return Instrument{
		Observatory: "Paranal",
		Name:        "HAWKI",

		// (4 m)^2 * pi, derated for obstruction and reflectance
		CollectionArea:    16.0 * math.Pi * 0.8 * 0.85,
		PixelScale:        0.1063,
		DarkCurrent:       0.01,
		ReadNoise:         5.0,
		QuantumEfficiency: 0.9,

		SupportedFilters: []string{
			"Y",
			"NB1060",
			"NB1190",
			"J",
			"CH4",
			"H",
			"NB2090",
			"H2",
			"Ks",
			"BrGamma",
		},
	}
}

// Supports reports whether the named filter is in the instrument's filter set.
func (in Instrument) Supports(filter string) bool {
	for _, f := range in.SupportedFilters {
		if f == filter {
			return true
		}
	}
	return false
}
