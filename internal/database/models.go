package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/telescope-tools/etcalc/pkg/etc"
)

// CalculationRun is one stored SNR computation: the configuration and the
// aperture-level noise budget. Per-brightness values live in
// CalculationPoint rows.
type CalculationRun struct {
	ID         string    `gorm:"primaryKey;column:id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	Filter     string    `gorm:"column:filter;index"`
	Seeing     float64   `gorm:"column:seeing_arcsec"`
	Airmass    float64   `gorm:"column:airmass"`
	NDIT       int       `gorm:"column:ndit"`
	DITSeconds float64   `gorm:"column:dit_seconds"`

	ApertureArea      float64 `gorm:"column:aperture_area_arcsec2"`
	PixelCount        float64 `gorm:"column:pixel_count"`
	SkyElectrons      float64 `gorm:"column:sky_electrons"`
	DarkElectrons     float64 `gorm:"column:dark_electrons"`
	ReadNoiseVariance float64 `gorm:"column:read_noise_variance"`

	PointCount int     `gorm:"column:point_count"`
	MinSNR     float64 `gorm:"column:min_snr"`
	MaxSNR     float64 `gorm:"column:max_snr"`

	Points []CalculationPoint `gorm:"foreignKey:RunID"`
}

// CalculationPoint is one brightness element of a run, in input order.
type CalculationPoint struct {
	RunID      string  `gorm:"primaryKey;column:run_id"`
	Index      int     `gorm:"primaryKey;column:idx"`
	Brightness float64 `gorm:"column:brightness"`
	Unit       string  `gorm:"column:unit"`
	Signal     float64 `gorm:"column:signal_electrons"`
	SNR        float64 `gorm:"column:snr"`
}

// NewRun converts a calculator result into storable rows.
func NewRun(res *etc.Result) *CalculationRun {
	run := &CalculationRun{
		ID:         uuid.NewString(),
		CreatedAt:  res.ComputedAt,
		Filter:     res.Filter,
		Seeing:     res.Seeing,
		Airmass:    res.Airmass,
		NDIT:       res.NDIT,
		DITSeconds: res.DIT,

		ApertureArea:      res.ApertureArea,
		PixelCount:        res.PixelCount,
		SkyElectrons:      res.Sky,
		DarkElectrons:     res.Dark,
		ReadNoiseVariance: res.ReadNoiseVariance,

		PointCount: len(res.SNR),
	}

	for i, b := range res.Brightness {
		if i == 0 || res.SNR[i] < run.MinSNR {
			run.MinSNR = res.SNR[i]
		}
		if i == 0 || res.SNR[i] > run.MaxSNR {
			run.MaxSNR = res.SNR[i]
		}
		run.Points = append(run.Points, CalculationPoint{
			RunID:      run.ID,
			Index:      i,
			Brightness: b.Value,
			Unit:       string(b.Unit),
			Signal:     res.Signal[i],
			SNR:        res.SNR[i],
		})
	}
	return run
}

// SaveRun stores a completed calculation.
func (c *Client) SaveRun(res *etc.Result) (*CalculationRun, error) {
	run := NewRun(res)
	if err := c.DB.Create(run).Error; err != nil {
		return nil, fmt.Errorf("saving calculation run: %w", err)
	}
	return run, nil
}

// GetRun fetches one run with its points, ordered as computed.
func (c *Client) GetRun(id string) (*CalculationRun, error) {
	var run CalculationRun
	err := c.DB.Preload("Points", func(db *gorm.DB) *gorm.DB {
		return db.Order("idx ASC")
	}).First(&run, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs without their points.
func (c *Client) ListRuns(limit int) ([]CalculationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []CalculationRun
	err := c.DB.Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}
