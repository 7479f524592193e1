package fluxconv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/telescope-tools/etcalc/pkg/etc"
)

func TestPhotonFlux(t *testing.T) {
	var got fluxRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(fluxResponse{PhotonFlux: 42.5})
	}))
	defer srv.Close()

	c := New(srv.URL, "Paranal", "HAWKI", 0)
	flux, err := c.PhotonFlux(context.Background(), "Ks", etc.Brightness{Value: 18.5, Unit: etc.ABMag})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flux != 42.5 {
		t.Errorf("flux = %g, want 42.5", flux)
	}

	// the instrument identity is bound into every request
	if got.Observatory != "Paranal" || got.Instrument != "HAWKI" {
		t.Errorf("identity not sent: %+v", got)
	}
	if got.Filter != "Ks" || got.Value != 18.5 || got.Unit != "ab" {
		t.Errorf("brightness not sent faithfully: %+v", got)
	}
}

func TestPhotonFluxServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown unit", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := New(srv.URL, "Paranal", "HAWKI", 0)
	if _, err := c.PhotonFlux(context.Background(), "Ks", etc.Vega(15)); err == nil {
		t.Fatal("expected error from non-200 response")
	}
}

func TestPhotonFluxUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "Paranal", "HAWKI", 0)
	if _, err := c.PhotonFlux(context.Background(), "Ks", etc.Vega(15)); err == nil {
		t.Fatal("expected error when service is unreachable")
	}
}
