package database

import (
	"testing"
	"time"

	"github.com/telescope-tools/etcalc/pkg/etc"
)

func TestNewRun(t *testing.T) {
	res := &etc.Result{
		Filter:     "Ks",
		Seeing:     0.8,
		Airmass:    1.2,
		ComputedAt: time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC),
		Brightness: etc.Brightnesses([]float64{12, 18, 24}),
		NDIT:       60,
		DIT:        60,

		ApertureArea:      2.01,
		PixelCount:        178,
		Signal:            []float64{1e7, 5e4, 300},
		Noise:             []float64{4e3, 900, 700},
		SNR:               []float64{2500, 55, 0.4},
		Sky:               4.4e5,
		Dark:              6400,
		ReadNoiseVariance: 2.7e5,
	}

	run := NewRun(res)

	if run.ID == "" {
		t.Error("run should get a generated ID")
	}
	if run.PointCount != 3 || len(run.Points) != 3 {
		t.Fatalf("expected 3 points, got count=%d len=%d", run.PointCount, len(run.Points))
	}
	if run.MinSNR != 0.4 || run.MaxSNR != 2500 {
		t.Errorf("SNR range = [%g, %g], want [0.4, 2500]", run.MinSNR, run.MaxSNR)
	}
	for i, p := range run.Points {
		if p.Index != i {
			t.Errorf("point %d has index %d, order must be preserved", i, p.Index)
		}
		if p.RunID != run.ID {
			t.Errorf("point %d not linked to run", i)
		}
		if p.Brightness != res.Brightness[i].Value || p.SNR != res.SNR[i] {
			t.Errorf("point %d values diverge from result", i)
		}
	}
	if run.Points[0].Unit != "vega" {
		t.Errorf("unit = %q, want vega", run.Points[0].Unit)
	}
}
