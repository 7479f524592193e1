package svo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const ksProfile = `# Paranal/HAWKI.Ks
# wavelength(A) transmission
19000.0 0.005
19800.0 0.12
20500.0 0.82
21500.0 0.91
22500.0 0.78
23200.0 0.10
24000.0 0.002
`

func newProfileServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		id := r.URL.Query().Get("ID")
		if id != "Paranal/HAWKI.Ks" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(ksProfile))
	}))
}

func TestCurveFetchAndParse(t *testing.T) {
	var hits int
	srv := newProfileServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, "", 0)
	curve, err := c.Curve(context.Background(), "Paranal", "HAWKI", "Ks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(curve.Wavelengths) != 7 {
		t.Errorf("expected 7 samples, got %d", len(curve.Wavelengths))
	}

	w, err := curve.EffectiveWindow()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// peak 0.91, cut 0.182: samples 20500..22500 qualify
	if w.MinAngstrom != 20500 || w.MaxAngstrom != 22500 {
		t.Errorf("window = [%g, %g], want [20500, 22500]", w.MinAngstrom, w.MaxAngstrom)
	}
}

func TestCurveMemoryCache(t *testing.T) {
	var hits int
	srv := newProfileServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, "", 0)
	for i := 0; i < 3; i++ {
		if _, err := c.Curve(context.Background(), "Paranal", "HAWKI", "Ks"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("expected one upstream fetch, got %d", hits)
	}
}

func TestCurveDiskCache(t *testing.T) {
	var hits int
	srv := newProfileServer(t, &hits)
	cacheDir := t.TempDir()

	c1 := New(srv.URL, cacheDir, 0)
	if _, err := c1.Curve(context.Background(), "Paranal", "HAWKI", "Ks"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	srv.Close() // a second client must not need the network

	c2 := New(srv.URL, cacheDir, 0)
	curve, err := c2.Curve(context.Background(), "Paranal", "HAWKI", "Ks")
	if err != nil {
		t.Fatalf("disk cache miss after server shutdown: %v", err)
	}
	if len(curve.Wavelengths) != 7 {
		t.Errorf("cached curve truncated: %d samples", len(curve.Wavelengths))
	}
	if hits != 1 {
		t.Errorf("expected one upstream fetch total, got %d", hits)
	}
}

func TestUnknownFilter(t *testing.T) {
	var hits int
	srv := newProfileServer(t, &hits)
	defer srv.Close()

	c := New(srv.URL, "", 0)
	if _, err := c.Curve(context.Background(), "Paranal", "HAWKI", "Qx"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestMalformedProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("21000 not-a-number\n"))
	}))
	defer srv.Close()

	c := New(srv.URL, "", 0)
	if _, err := c.Curve(context.Background(), "Paranal", "HAWKI", "Ks"); err == nil {
		t.Fatal("expected parse error")
	}
}
