// Package app wires configuration, the external lookup services, the
// calculator and the controllers into a running application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/telescope-tools/etcalc/internal/controllers/restserver"
	"github.com/telescope-tools/etcalc/internal/database"
	"github.com/telescope-tools/etcalc/internal/fluxconv"
	"github.com/telescope-tools/etcalc/internal/log"
	"github.com/telescope-tools/etcalc/internal/skycalc"
	"github.com/telescope-tools/etcalc/internal/svo"
	"github.com/telescope-tools/etcalc/pkg/config"
	"github.com/telescope-tools/etcalc/pkg/etc"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// BuildCalculator constructs a calculator with its service clients from
// configuration. Shared by the server and the one-shot CLI.
func BuildCalculator(cfg *config.ConfigData) (*etc.Calculator, error) {
	instrument := InstrumentFromConfig(cfg.Instrument)

	if cfg.Services.FluxURL == "" || cfg.Services.SkyURL == "" || cfg.Services.TransmissionURL == "" {
		return nil, fmt.Errorf("services.flux_url, sky_url and transmission_url must all be configured")
	}
	timeout := time.Duration(cfg.Services.TimeoutSeconds) * time.Second

	flux := fluxconv.New(cfg.Services.FluxURL, instrument.Observatory, instrument.Name, timeout)
	sky := skycalc.New(cfg.Services.SkyURL, timeout)
	trans := svo.New(cfg.Services.TransmissionURL, cfg.Services.CacheDir, timeout)

	return etc.New(instrument, flux, sky, trans), nil
}

// InstrumentFromConfig merges configured overrides onto the HAWK-I defaults.
func InstrumentFromConfig(in *config.InstrumentData) etc.Instrument {
	instrument := etc.DefaultHAWKI()
	if in == nil {
		return instrument
	}
	if in.Observatory != "" {
		instrument.Observatory = in.Observatory
	}
	if in.Name != "" {
		instrument.Name = in.Name
	}
	if in.CollectionArea > 0 {
		instrument.CollectionArea = in.CollectionArea
	}
	if in.PixelScale > 0 {
		instrument.PixelScale = in.PixelScale
	}
	if in.DarkCurrent > 0 {
		instrument.DarkCurrent = in.DarkCurrent
	}
	if in.ReadNoise > 0 {
		instrument.ReadNoise = in.ReadNoise
	}
	if in.QuantumEfficiency > 0 {
		instrument.QuantumEfficiency = in.QuantumEfficiency
	}
	if len(in.Filters) > 0 {
		instrument.SupportedFilters = in.Filters
	}
	return instrument
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	calc, err := BuildCalculator(cfg)
	if err != nil {
		return err
	}

	var db *database.Client
	if cfg.Storage.Postgres != nil && cfg.Storage.Postgres.ConnectionString != "" {
		db = database.NewClient(cfg.Storage.Postgres, a.logger)
		if err := db.Connect(); err != nil {
			return err
		}
	} else {
		log.Info("no run-history storage configured; runs will not be persisted")
	}

	started := 0
	for _, ctrl := range cfg.Controllers {
		if ctrl.Type != "rest" || ctrl.RESTServer == nil {
			log.Warnf("skipping unknown controller type %q", ctrl.Type)
			continue
		}
		rest, err := restserver.NewController(ctx, &wg, *ctrl.RESTServer, calc, db, a.logger)
		if err != nil {
			return fmt.Errorf("creating REST controller: %w", err)
		}
		if err := rest.StartController(); err != nil {
			return fmt.Errorf("starting REST controller: %w", err)
		}
		started++
	}
	if started == 0 {
		return fmt.Errorf("no controllers configured; nothing to serve")
	}

	log.Info("Application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.Infof("received %v, shutting down", sig)
	case <-ctx.Done():
	}

	cancel()
	wg.Wait()
	return nil
}
