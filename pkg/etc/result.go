package etc

import (
	"fmt"
	"io"
	"time"
)

// Result holds the full noise budget of one SNR computation. Per-element
// slices are ordered exactly as the brightness input; scalar fields apply to
// the whole aperture.
type Result struct {
	Filter     string       `json:"filter"`
	Seeing     float64      `json:"seeing_arcsec"`
	Airmass    float64      `json:"airmass,omitempty"`
	ComputedAt time.Time    `json:"computed_at"`
	Brightness []Brightness `json:"brightness"`

	NDIT         int     `json:"ndit"`
	DIT          float64 `json:"dit_seconds"`
	ExposureTime float64 `json:"exposure_time_seconds"` // DIT * NDIT

	ApertureArea float64 `json:"aperture_area_arcsec2"` // pi * seeing^2
	PixelCount   float64 `json:"pixel_count"`

	Signal []float64 `json:"signal_electrons"` // per brightness element
	Noise  []float64 `json:"noise_electrons"`  // per brightness element, RMS
	SNR    []float64 `json:"snr"`

	Sky               float64 `json:"sky_electrons"`            // in aperture
	Dark              float64 `json:"dark_electrons"`           // in aperture
	ReadNoiseVariance float64 `json:"read_noise_variance"`      // e-^2, in aperture
	SkyWindowMinNm    float64 `json:"sky_window_min_nm"`
	SkyWindowMaxNm    float64 `json:"sky_window_max_nm"`
}

// WriteSummary emits the human-readable report of the noise budget. All values
// are sums inside the aperture.
func (r *Result) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, "Statistics (all values are the sum inside the aperture)")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Filter           : %s\n", r.Filter)
	fmt.Fprintf(w, "Seeing           : %.2f arcsec\n", r.Seeing)
	fmt.Fprintf(w, "Exposure         : %d x %.1f s = %.1f s\n", r.NDIT, r.DIT, r.ExposureTime)
	fmt.Fprintf(w, "Number of pixels : %.1f\n", r.PixelCount)
	fmt.Fprintf(w, "Source signal    : %s e-\n", formatSeries(r.Signal))
	fmt.Fprintf(w, "Sky background   : %.1f e-\n", r.Sky)
	fmt.Fprintf(w, "Dark current     : %.1f e-\n", r.Dark)
	fmt.Fprintf(w, "Read noise       : %.1f e-^2\n", r.ReadNoiseVariance)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Signal-to-Noise  : %s\n", formatSeries(r.SNR))
}

// formatSeries prints a short series in full and elides the middle of a long
// one, so a thousand-point magnitude sweep stays readable.
func formatSeries(v []float64) string {
	switch {
	case len(v) == 0:
		return "[]"
	case len(v) == 1:
		return fmt.Sprintf("%.3f", v[0])
	case len(v) <= 6:
		s := "["
		for i, x := range v {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%.3f", x)
		}
		return s + "]"
	default:
		return fmt.Sprintf("[%.3f, %.3f, ... %.3f] (%d values)",
			v[0], v[1], v[len(v)-1], len(v))
	}
}
