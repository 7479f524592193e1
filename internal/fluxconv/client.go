// Package fluxconv is the client for the flux-conversion service, which turns
// a target brightness in a given filter into an expected photon flux per unit
// time and collecting area.
package fluxconv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/telescope-tools/etcalc/internal/log"
	"github.com/telescope-tools/etcalc/pkg/etc"
)

// Client queries the flux conversion endpoint. It implements etc.FluxService.
type Client struct {
	baseURL     string
	observatory string
	instrument  string
	httpClient  *http.Client
}

// New creates a flux-conversion client bound to one observatory/instrument
// identity. Timeout of zero means 30 seconds.
func New(baseURL, observatory, instrument string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		observatory: observatory,
		instrument:  instrument,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type fluxRequest struct {
	Observatory string  `json:"observatory"`
	Instrument  string  `json:"instrument"`
	Filter      string  `json:"filter"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
}

type fluxResponse struct {
	PhotonFlux float64 `json:"photon_flux"` // ph/s/m^2
}

// PhotonFlux returns the expected photon flux for the brightness through the
// filter, in photons per second per square meter.
func (c *Client) PhotonFlux(ctx context.Context, filter string, b etc.Brightness) (float64, error) {
	body, err := json.Marshal(fluxRequest{
		Observatory: c.observatory,
		Instrument:  c.instrument,
		Filter:      filter,
		Value:       b.Value,
		Unit:        string(b.Unit),
	})
	if err != nil {
		return 0, fmt.Errorf("encoding flux request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building flux request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("querying flux service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("flux service returned %d: %s", resp.StatusCode, msg)
	}

	var fr fluxResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return 0, fmt.Errorf("decoding flux response: %w", err)
	}

	log.Debugw("flux lookup", "filter", filter, "brightness", b.String(),
		"flux", fr.PhotonFlux, "duration_ms", time.Since(start).Milliseconds())

	return fr.PhotonFlux, nil
}
