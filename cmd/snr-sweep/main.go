// snr-sweep computes the SNR of a point source over a brightness sweep and
// prints the noise budget, optionally saving a brightness-vs-SNR plot and
// persisting the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/telescope-tools/etcalc/internal/app"
	"github.com/telescope-tools/etcalc/internal/database"
	"github.com/telescope-tools/etcalc/internal/log"
	"github.com/telescope-tools/etcalc/pkg/config"
	"github.com/telescope-tools/etcalc/pkg/etc"
	"github.com/telescope-tools/etcalc/pkg/plot"
	"github.com/telescope-tools/etcalc/pkg/quantity"
)

func main() {
	var (
		cfgFile    = flag.String("config", "config.yaml", "Path to YAML configuration")
		filterName = flag.String("filter", "Ks", "Filter name")
		magMin     = flag.Float64("mag-min", 10, "Brightest magnitude of the sweep (Vega)")
		magMax     = flag.Float64("mag-max", 25, "Faintest magnitude of the sweep (Vega)")
		points     = flag.Int("points", 1000, "Number of points in the sweep")
		ndit       = flag.Int("ndit", 60, "Number of frames")
		dit        = flag.String("dit", "60", "Exposure time per frame (bare seconds or quantity, e.g. 60s, 1.5min)")
		seeing     = flag.String("seeing", "0.8", "Seeing (bare arcsec or quantity, e.g. 0.8arcsec)")
		airmass    = flag.Float64("airmass", 0, "Airmass (0 leaves it to the sky model)")
		plotFile   = flag.String("plot", "", "Save a brightness-vs-SNR plot to this file")
		thresholds = flag.String("thresholds", "5", "Comma-separated SNR threshold lines for the plot")
		save       = flag.Bool("save", false, "Persist the run to the configured run-history database")
		debug      = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*cfgFile, *filterName, *magMin, *magMax, *points, *ndit, *dit, *seeing, *airmass, *plotFile, *thresholds, *save); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgFile, filterName string, magMin, magMax float64, points, ndit int, ditStr, seeingStr string, airmass float64, plotFile, thresholdStr string, save bool) error {
	provider := config.NewYAMLProvider(cfgFile)
	defer provider.Close()
	cfg, err := provider.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	calc, err := app.BuildCalculator(cfg)
	if err != nil {
		return err
	}

	seeingQ, err := quantity.ParseAngle(seeingStr)
	if err != nil {
		return fmt.Errorf("bad -seeing: %w", err)
	}
	ditQ, err := quantity.ParseDuration(ditStr)
	if err != nil {
		return fmt.Errorf("bad -dit: %w", err)
	}

	cond := etc.ObservingCondition{Seeing: seeingQ}
	if airmass > 0 {
		cond.Extra = map[string]float64{"airmass": airmass}
	}
	calc.SetObservingCondition(cond)

	if points < 2 {
		points = 2
	}
	mags := make([]float64, points)
	for i := range mags {
		mags[i] = magMin + (magMax-magMin)*float64(i)/float64(points-1)
	}

	res, err := calc.SNR(context.Background(), filterName, etc.Brightnesses(mags), ndit, ditQ)
	if err != nil {
		return err
	}

	if err := calc.Summary(os.Stdout); err != nil {
		return err
	}

	if plotFile != "" {
		ths, err := parseThresholds(thresholdStr)
		if err != nil {
			return err
		}
		if err := plot.SaveFile(res, ths, plotFile); err != nil {
			return err
		}
		fmt.Printf("\nPlot saved to %s\n", plotFile)
	}

	if save {
		if cfg.Storage.Postgres == nil || cfg.Storage.Postgres.ConnectionString == "" {
			return fmt.Errorf("-save requires storage.postgres to be configured")
		}
		db := database.NewClient(cfg.Storage.Postgres, log.GetSugaredLogger())
		if err := db.Connect(); err != nil {
			return err
		}
		saved, err := db.SaveRun(res)
		if err != nil {
			return err
		}
		fmt.Printf("Run saved as %s\n", saved.ID)
	}

	return nil
}

func parseThresholds(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad threshold %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}
