// Package database persists exposure time calculations so observers can
// revisit a run without recomputing it.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/telescope-tools/etcalc/internal/log"
	"github.com/telescope-tools/etcalc/pkg/config"
	"go.uber.org/zap"
)

// Client holds the connection to the run-history database
type Client struct {
	cfg    *config.PostgresData
	DB     *gorm.DB
	logger *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(cfg *config.PostgresData, logger *zap.SugaredLogger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
	}
}

// Connect connects to the database and migrates the run-history schema
func (c *Client) Connect() error {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  false,
		},
	)

	var err error
	c.DB, err = gorm.Open(postgres.Open(c.cfg.ConnectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return fmt.Errorf("unable to connect to run-history database: %w", err)
	}

	if err := c.DB.AutoMigrate(&CalculationRun{}, &CalculationPoint{}); err != nil {
		return fmt.Errorf("migrating run-history schema: %w", err)
	}

	log.Info("run-history database connection successful")
	return nil
}
