// Package plot renders brightness-vs-SNR charts for exposure time
// calculations. The SNR axis is logarithmic since a magnitude sweep spans
// several decades of SNR; optional horizontal lines mark detection thresholds
// such as SNR=5.
package plot

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/telescope-tools/etcalc/pkg/etc"
)

const (
	defaultWidth  = 6 * vg.Inch
	defaultHeight = 4 * vg.Inch
)

// build assembles the plot from a result. Points with non-positive SNR are
// dropped: they cannot be drawn on a log axis.
func build(res *etc.Result, thresholds []float64) (*plot.Plot, error) {
	if res == nil {
		return nil, etc.ErrNotComputed
	}
	if len(res.Brightness) == 0 || len(res.SNR) != len(res.Brightness) {
		return nil, fmt.Errorf("result has inconsistent brightness/SNR lengths")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s  seeing %.2f\"  %d x %.0f s", res.Filter, res.Seeing, res.NDIT, res.DIT)
	p.X.Label.Text = "Brightness"
	p.Y.Label.Text = "SNR"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, len(res.SNR))
	xmin, xmax := res.Brightness[0].Value, res.Brightness[0].Value
	for i, b := range res.Brightness {
		if b.Value < xmin {
			xmin = b.Value
		}
		if b.Value > xmax {
			xmax = b.Value
		}
		if res.SNR[i] <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: b.Value, Y: res.SNR[i]})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no positive SNR values to plot")
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("building scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(1.2)
	scatter.GlyphStyle.Color = color.Black
	p.Add(scatter)

	for _, th := range thresholds {
		if th <= 0 {
			return nil, fmt.Errorf("SNR threshold must be positive, got %g", th)
		}
		line, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: th}, {X: xmax, Y: th}})
		if err != nil {
			return nil, fmt.Errorf("building threshold line: %w", err)
		}
		line.Color = color.RGBA{R: 180, A: 255}
		p.Add(line)
	}

	p.X.Min, p.X.Max = xmin, xmax
	return p, nil
}

// SaveFile writes the chart to the named image file; the format follows the
// filename extension (.png, .pdf, .svg, ...).
func SaveFile(res *etc.Result, thresholds []float64, filename string) error {
	if filename == "" {
		return fmt.Errorf("plot filename must not be empty")
	}
	p, err := build(res, thresholds)
	if err != nil {
		return err
	}
	if err := p.Save(defaultWidth, defaultHeight, filename); err != nil {
		return fmt.Errorf("saving plot to %s: %w", filename, err)
	}
	return nil
}

// WritePNG streams the chart as PNG to w, for HTTP responses.
func WritePNG(res *etc.Result, thresholds []float64, w io.Writer) error {
	p, err := build(res, thresholds)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(defaultWidth, defaultHeight, "png")
	if err != nil {
		return fmt.Errorf("encoding plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing plot: %w", err)
	}
	return nil
}
