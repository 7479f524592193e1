// Package restserver exposes the exposure time calculator over HTTP: SNR
// computation, the latest noise-budget summary, a rendered SNR plot and the
// stored run history.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/telescope-tools/etcalc/internal/database"
	"github.com/telescope-tools/etcalc/internal/log"
	"github.com/telescope-tools/etcalc/pkg/config"
	"github.com/telescope-tools/etcalc/pkg/etc"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server

	// calcMu serializes access: the calculator mutates per-call state and is
	// not safe for concurrent use.
	calcMu sync.Mutex
	calc   *etc.Calculator

	DB        *database.Client
	DBEnabled bool

	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new REST server controller around a calculator.
// db may be nil when no run-history storage is configured.
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, calc *etc.Calculator, db *database.Client, logger *zap.SugaredLogger) (*Controller, error) {
	if calc == nil {
		return nil, fmt.Errorf("REST server needs a calculator")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		calc:       calc,
		DB:         db,
		DBEnabled:  db != nil,
		logger:     logger,
	}

	if ctrl.restConfig.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.restConfig.ListenAddr = "0.0.0.0"
	}
	if ctrl.restConfig.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		ctrl.restConfig.Port = 8080
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.restConfig.ListenAddr, ctrl.restConfig.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/snr", c.handlers.ComputeSNR).Methods(http.MethodPost)
	api.HandleFunc("/snr/latest", c.handlers.LatestResult).Methods(http.MethodGet)
	api.HandleFunc("/filters", c.handlers.Filters).Methods(http.MethodGet)
	api.HandleFunc("/plot", c.handlers.Plot).Methods(http.MethodGet)
	api.HandleFunc("/health", c.handlers.Health).Methods(http.MethodGet)

	if c.DBEnabled {
		api.HandleFunc("/runs", c.handlers.ListRuns).Methods(http.MethodGet)
		api.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)
	}

	return router
}
