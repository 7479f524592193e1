package config

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
instrument:
  observatory: Paranal
  name: HAWKI
  quantum_efficiency: 0.9
services:
  flux_url: http://flux.local/api
  sky_url: http://sky.local/api
  transmission_url: http://svo.local/fps
  timeout_seconds: 30
  cache_dir: /var/cache/etcalc
storage:
  postgres:
    connection_string: host=localhost dbname=etcalc
controllers:
  - type: rest
    rest:
      port: 8080
      listen_addr: 127.0.0.1
`

func writeTestYAML(t *testing.T) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(name, []byte(testYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestYAMLProvider(t *testing.T) {
	p := NewYAMLProvider(writeTestYAML(t))
	defer p.Close()

	cfg, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Instrument == nil || cfg.Instrument.Name != "HAWKI" {
		t.Errorf("instrument section not loaded: %+v", cfg.Instrument)
	}
	if cfg.Instrument.QuantumEfficiency != 0.9 {
		t.Errorf("quantum efficiency = %g, want 0.9", cfg.Instrument.QuantumEfficiency)
	}
	if cfg.Services.FluxURL != "http://flux.local/api" {
		t.Errorf("flux url = %q", cfg.Services.FluxURL)
	}
	if cfg.Services.TimeoutSeconds != 30 {
		t.Errorf("timeout = %d, want 30", cfg.Services.TimeoutSeconds)
	}
	if cfg.Storage.Postgres == nil || cfg.Storage.Postgres.ConnectionString == "" {
		t.Error("postgres storage not loaded")
	}
	if len(cfg.Controllers) != 1 || cfg.Controllers[0].Type != "rest" {
		t.Fatalf("controllers not loaded: %+v", cfg.Controllers)
	}
	if cfg.Controllers[0].RESTServer.Port != 8080 {
		t.Errorf("rest port = %d, want 8080", cfg.Controllers[0].RESTServer.Port)
	}
	if !p.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	p := NewYAMLProvider("/nonexistent/config.yaml")
	if _, err := p.LoadConfig(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func seedTestSQLite(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "config.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE instrument (observatory TEXT, name TEXT, collection_area_m2 REAL,
			pixel_scale_arcsec REAL, dark_current REAL, read_noise REAL,
			quantum_efficiency REAL, filters TEXT)`,
		`INSERT INTO instrument VALUES ('Paranal', 'HAWKI', 34.18, 0.1063, 0.01, 5.0, 0.9, 'J,H,Ks')`,
		`CREATE TABLE services (flux_url TEXT, sky_url TEXT, transmission_url TEXT,
			timeout_seconds INTEGER, cache_dir TEXT)`,
		`INSERT INTO services VALUES ('http://flux.local', 'http://sky.local', 'http://svo.local', 15, '')`,
		`CREATE TABLE storage (postgres_connection_string TEXT)`,
		`INSERT INTO storage VALUES ('host=localhost dbname=etcalc')`,
		`CREATE TABLE controllers (type TEXT, listen_addr TEXT, port INTEGER, log_file TEXT)`,
		`INSERT INTO controllers VALUES ('rest', '0.0.0.0', 9090, '')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seeding sqlite: %v", err)
		}
	}
	return dbPath
}

func TestSQLiteProvider(t *testing.T) {
	p, err := NewSQLiteProvider(seedTestSQLite(t))
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	defer p.Close()

	cfg, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Instrument == nil || cfg.Instrument.Name != "HAWKI" {
		t.Errorf("instrument not loaded: %+v", cfg.Instrument)
	}
	if got := len(cfg.Instrument.Filters); got != 3 {
		t.Errorf("filters = %v, want 3 entries", cfg.Instrument.Filters)
	}
	if cfg.Services.SkyURL != "http://sky.local" {
		t.Errorf("sky url = %q", cfg.Services.SkyURL)
	}
	if cfg.Storage.Postgres == nil {
		t.Error("postgres storage not loaded")
	}
	if len(cfg.Controllers) != 1 || cfg.Controllers[0].RESTServer == nil ||
		cfg.Controllers[0].RESTServer.Port != 9090 {
		t.Errorf("controllers not loaded: %+v", cfg.Controllers)
	}
	if p.IsReadOnly() {
		t.Error("SQLite provider should not be read-only")
	}
}
