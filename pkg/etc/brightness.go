package etc

import "fmt"

// BrightnessUnit identifies the photometric system a brightness value is
// expressed in. The flux-conversion service needs the unit to pick the right
// conversion path.
type BrightnessUnit string

const (
	VegaMag BrightnessUnit = "vega"
	ABMag   BrightnessUnit = "ab"
	Jansky  BrightnessUnit = "jy"
)

// ParseBrightnessUnit maps a unit label to a BrightnessUnit. An empty label
// defaults to Vega magnitudes, matching the convention for bare numbers.
func ParseBrightnessUnit(s string) (BrightnessUnit, error) {
	switch s {
	case "", "vega", "mag", "vegamag":
		return VegaMag, nil
	case "ab", "abmag":
		return ABMag, nil
	case "jy", "jansky":
		return Jansky, nil
	}
	return "", fmt.Errorf("unknown brightness unit %q (use vega, ab or jy)", s)
}

// Brightness is a target brightness in one of the supported unit systems.
type Brightness struct {
	Value float64        `json:"value"`
	Unit  BrightnessUnit `json:"unit"`
}

// Vega builds a brightness in Vega magnitudes, the assumed default.
func Vega(mag float64) Brightness {
	return Brightness{Value: mag, Unit: VegaMag}
}

// Brightnesses converts a slice of bare magnitudes into Vega brightness
// values, preserving order.
func Brightnesses(mags []float64) []Brightness {
	out := make([]Brightness, len(mags))
	for i, m := range mags {
		out[i] = Vega(m)
	}
	return out
}

func (b Brightness) String() string {
	return fmt.Sprintf("%g %s", b.Value, b.Unit)
}
