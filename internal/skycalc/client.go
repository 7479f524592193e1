// Package skycalc is the client for the sky-background service. Given a
// filter, a wavelength window and observing-condition parameters it returns
// the expected sky photon flux per unit time, collecting area and sky solid
// angle.
package skycalc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/telescope-tools/etcalc/internal/log"
	"github.com/telescope-tools/etcalc/pkg/bandpass"
	"github.com/telescope-tools/etcalc/pkg/lunar"
)

// Client queries the sky-background endpoint. It implements etc.SkyService.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// now is a hook for tests; defaults to time.Now
	now func() time.Time
}

// New creates a sky-background client. Timeout of zero means 30 seconds.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

type skyResponse struct {
	Flux float64 `json:"flux"` // ph/s/m^2/arcsec^2
}

// BackgroundFlux returns the sky photon flux for the filter over the given
// wavelength window. Observing-condition parameters are forwarded verbatim;
// the window is sent in nanometers, which is what the sky model expects.
// When the caller supplies no moon parameter, the moon-sun separation for the
// request time is filled in so the model does not silently assume new moon.
func (c *Client) BackgroundFlux(ctx context.Context, filter string, window bandpass.Window, params map[string]float64) (float64, error) {
	payload := map[string]any{
		"filter": filter,
		"wmin":   window.MinNm(),
		"wmax":   window.MaxNm(),
	}
	for k, v := range params {
		payload[k] = v
	}
	if _, ok := params["moon_sun_sep"]; !ok {
		payload["moon_sun_sep"] = lunar.Compute(c.now().UTC()).MoonSunSeparation
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding sky request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building sky request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("querying sky service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("sky service returned %d: %s", resp.StatusCode, msg)
	}

	var sr skyResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decoding sky response: %w", err)
	}

	log.Debugw("sky background lookup", "filter", filter,
		"wmin_nm", window.MinNm(), "wmax_nm", window.MaxNm(),
		"flux", sr.Flux, "duration_ms", time.Since(start).Milliseconds())

	return sr.Flux, nil
}
