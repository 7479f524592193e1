package app

import (
	"testing"

	"github.com/telescope-tools/etcalc/pkg/config"
)

func TestInstrumentFromConfig(t *testing.T) {
	t.Run("nil uses defaults", func(t *testing.T) {
		got := InstrumentFromConfig(nil)
		if got.Name != "HAWKI" || got.Observatory != "Paranal" {
			t.Errorf("defaults not applied: %s/%s", got.Observatory, got.Name)
		}
		if len(got.SupportedFilters) != 10 {
			t.Errorf("default filter set has %d entries, want 10", len(got.SupportedFilters))
		}
	})

	t.Run("partial override keeps other defaults", func(t *testing.T) {
		got := InstrumentFromConfig(&config.InstrumentData{
			ReadNoise: 12,
			Filters:   []string{"J", "Ks"},
		})
		if got.ReadNoise != 12 {
			t.Errorf("read noise = %g, want override 12", got.ReadNoise)
		}
		if got.QuantumEfficiency != 0.9 {
			t.Errorf("quantum efficiency = %g, want default 0.9", got.QuantumEfficiency)
		}
		if len(got.SupportedFilters) != 2 {
			t.Errorf("filters = %v, want override pair", got.SupportedFilters)
		}
	})
}

func TestBuildCalculatorRequiresEndpoints(t *testing.T) {
	_, err := BuildCalculator(&config.ConfigData{})
	if err == nil {
		t.Fatal("expected error when service endpoints are missing")
	}
}

func TestBuildCalculator(t *testing.T) {
	calc, err := BuildCalculator(&config.ConfigData{
		Services: config.ServicesData{
			FluxURL:         "http://flux.local",
			SkyURL:          "http://sky.local",
			TransmissionURL: "http://svo.local",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calc.Instrument().Name != "HAWKI" {
		t.Errorf("calculator built with wrong instrument: %s", calc.Instrument().Name)
	}
}
