package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/telescope-tools/etcalc/internal/log"
	"github.com/telescope-tools/etcalc/pkg/etc"
	"github.com/telescope-tools/etcalc/pkg/plot"
	"github.com/telescope-tools/etcalc/pkg/quantity"
	"github.com/telescope-tools/etcalc/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// snrRequest is the compute payload. Brightness, dit and seeing accept both
// bare JSON numbers and quoted quantity strings, and brightness additionally
// accepts an array; the scalar forms are coerced to one-element vectors.
type snrRequest struct {
	Filter     string             `json:"filter"`
	Brightness json.RawMessage    `json:"brightness"`
	Unit       string             `json:"unit,omitempty"`
	NDIT       int                `json:"ndit"`
	DIT        json.RawMessage    `json:"dit"`
	Seeing     json.RawMessage    `json:"seeing,omitempty"`
	SkyParams  map[string]float64 `json:"sky_params,omitempty"`
}

// decodeBrightness coerces a number, string or array into an ordered vector.
func decodeBrightness(raw json.RawMessage, unit etc.BrightnessUnit) ([]etc.Brightness, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("brightness is required")
	}

	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return []etc.Brightness{{Value: scalar, Unit: unit}}, nil
	}

	var vector []float64
	if err := json.Unmarshal(raw, &vector); err == nil {
		out := make([]etc.Brightness, len(vector))
		for i, v := range vector {
			out[i] = etc.Brightness{Value: v, Unit: unit}
		}
		return out, nil
	}

	return nil, fmt.Errorf("brightness must be a number or an array of numbers")
}

// decodeDuration coerces a JSON number or quantity string into a Duration.
func decodeDuration(raw json.RawMessage) (quantity.Duration, error) {
	if len(raw) == 0 {
		return quantity.Duration{}, fmt.Errorf("%w: dit is required", quantity.ErrNotAQuantity)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return quantity.DurationFrom(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return quantity.ParseDuration(s)
	}
	return quantity.Duration{}, fmt.Errorf("%w: dit must be a number or a quantity string", quantity.ErrNotAQuantity)
}

// decodeAngle coerces a JSON number or quantity string into an Angle.
func decodeAngle(raw json.RawMessage) (quantity.Angle, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return quantity.AngleFrom(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return quantity.ParseAngle(s)
	}
	return quantity.Angle{}, fmt.Errorf("%w: seeing must be a number or a quantity string", quantity.ErrNotAQuantity)
}

// writeComputeError maps the calculator error taxonomy onto HTTP statuses.
func (h *Handlers) writeComputeError(w http.ResponseWriter, req *http.Request, err error) {
	var cfgErr *etc.ConfigError
	var svcErr *etc.ServiceError
	switch {
	case errors.As(err, &cfgErr):
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid_configuration", err)
	case errors.Is(err, quantity.ErrWrongDimension):
		h.formatter.WriteError(w, req, http.StatusBadRequest, "wrong_dimension", err)
	case errors.Is(err, quantity.ErrNotAQuantity):
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid_value", err)
	case errors.Is(err, etc.ErrNotComputed):
		h.formatter.WriteError(w, req, http.StatusNotFound, "not_computed", err)
	case errors.As(err, &svcErr):
		h.formatter.WriteError(w, req, http.StatusBadGateway, "external_dependency", err)
	default:
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid_request", err)
	}
}

// ComputeSNR runs one SNR calculation and returns the full noise budget.
func (h *Handlers) ComputeSNR(w http.ResponseWriter, req *http.Request) {
	var sr snrRequest
	if err := json.NewDecoder(req.Body).Decode(&sr); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid_request", fmt.Errorf("decoding request: %w", err))
		return
	}

	unit, err := etc.ParseBrightnessUnit(sr.Unit)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid_value", err)
		return
	}
	brightness, err := decodeBrightness(sr.Brightness, unit)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid_value", err)
		return
	}
	dit, err := decodeDuration(sr.DIT)
	if err != nil {
		h.writeComputeError(w, req, err)
		return
	}

	c := h.controller
	c.calcMu.Lock()
	if len(sr.Seeing) > 0 {
		seeing, err := decodeAngle(sr.Seeing)
		if err != nil {
			c.calcMu.Unlock()
			h.writeComputeError(w, req, err)
			return
		}
		c.calc.SetObservingCondition(etc.ObservingCondition{
			Seeing: seeing,
			Extra:  sr.SkyParams,
		})
	}
	res, err := c.calc.SNR(req.Context(), sr.Filter, brightness, sr.NDIT, dit)
	c.calcMu.Unlock()
	if err != nil {
		log.Warnf("SNR computation failed: %v", err)
		h.writeComputeError(w, req, err)
		return
	}

	if c.DBEnabled {
		if run, err := c.DB.SaveRun(res); err != nil {
			// history is best-effort; the computation itself succeeded
			log.Errorf("failed to persist run: %v", err)
		} else {
			w.Header().Set("X-Run-ID", run.ID)
		}
	}

	h.formatter.WriteResponse(w, req, res, http.StatusOK)
}

// LatestResult returns the most recent valid noise budget.
func (h *Handlers) LatestResult(w http.ResponseWriter, req *http.Request) {
	c := h.controller
	c.calcMu.Lock()
	res, ok := c.calc.LastResult()
	c.calcMu.Unlock()
	if !ok {
		h.writeComputeError(w, req, etc.ErrNotComputed)
		return
	}
	h.formatter.WriteResponse(w, req, res, http.StatusOK)
}

// Filters lists the instrument's supported filter names.
func (h *Handlers) Filters(w http.ResponseWriter, req *http.Request) {
	in := h.controller.calc.Instrument()
	h.formatter.WriteResponse(w, req, map[string]any{
		"observatory": in.Observatory,
		"instrument":  in.Name,
		"filters":     in.SupportedFilters,
	}, http.StatusOK)
}

// Plot renders the latest result as a PNG, with optional threshold lines
// from a comma-separated ?thresholds= parameter.
func (h *Handlers) Plot(w http.ResponseWriter, req *http.Request) {
	var thresholds []float64
	if raw := req.URL.Query().Get("thresholds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			th, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid_value",
					fmt.Errorf("bad threshold %q", part))
				return
			}
			thresholds = append(thresholds, th)
		}
	}

	c := h.controller
	c.calcMu.Lock()
	res, ok := c.calc.LastResult()
	c.calcMu.Unlock()
	if !ok {
		h.writeComputeError(w, req, etc.ErrNotComputed)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := plot.WritePNG(res, thresholds, w); err != nil {
		log.Errorf("plot rendering failed: %v", err)
	}
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]string{"status": "ok"}, http.StatusOK)
}

// ListRuns returns recent stored runs.
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	limit := 0
	if raw := req.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	runs, err := h.controller.DB.ListRuns(limit)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "storage", err)
		return
	}
	h.formatter.WriteResponse(w, req, runs, http.StatusOK)
}

// GetRun returns one stored run with its per-brightness points.
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	run, err := h.controller.DB.GetRun(id)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, "storage", err)
		return
	}
	h.formatter.WriteResponse(w, req, run, http.StatusOK)
}
