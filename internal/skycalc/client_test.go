package skycalc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/telescope-tools/etcalc/pkg/bandpass"
)

func TestBackgroundFlux(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"flux": 1234.5})
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	window := bandpass.Window{MinAngstrom: 20500, MaxAngstrom: 22500}
	flux, err := c.BackgroundFlux(context.Background(), "Ks", window, map[string]float64{
		"airmass":     1.2,
		"custom_knob": 7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flux != 1234.5 {
		t.Errorf("flux = %g, want 1234.5", flux)
	}

	// the window is transmitted in nanometers
	if got["wmin"] != 2050.0 || got["wmax"] != 2250.0 {
		t.Errorf("window sent as [%v, %v] nm, want [2050, 2250]", got["wmin"], got["wmax"])
	}
	// condition parameters pass through untouched, including unknown keys
	if got["airmass"] != 1.2 || got["custom_knob"] != 7.0 {
		t.Errorf("condition params not forwarded verbatim: %v", got)
	}
}

func TestMoonSeparationDefaulted(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]float64{"flux": 1})
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	// fix a night with a known near-full moon: Feb 5, 2023
	c.now = func() time.Time { return time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC) }

	_, err := c.BackgroundFlux(context.Background(), "Ks", bandpass.Window{MinAngstrom: 20000, MaxAngstrom: 23000}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sep, ok := got["moon_sun_sep"].(float64)
	if !ok {
		t.Fatal("moon_sun_sep not defaulted when absent")
	}
	if sep < 170 || sep > 180 {
		t.Errorf("moon_sun_sep = %g near full moon, want ~180", sep)
	}
}

func TestMoonSeparationNotOverridden(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]float64{"flux": 1})
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	_, err := c.BackgroundFlux(context.Background(), "Ks",
		bandpass.Window{MinAngstrom: 20000, MaxAngstrom: 23000},
		map[string]float64{"moon_sun_sep": 45})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["moon_sun_sep"] != 45.0 {
		t.Errorf("caller-supplied moon_sun_sep overridden: %v", got["moon_sun_sep"])
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad sky parameter: zodiacal_unicorns", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	_, err := c.BackgroundFlux(context.Background(), "Ks", bandpass.Window{MinAngstrom: 1, MaxAngstrom: 2}, nil)
	if err == nil {
		t.Fatal("expected error from 400 response")
	}
}
