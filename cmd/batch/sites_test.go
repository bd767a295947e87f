package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/pkg/config"
)

var defaults = config.DefaultsConfig{Delta: 0.3, Step: 0.05, Price: 7.5, CapacityMW: 5, Year: 2023}

func TestParseSites(t *testing.T) {
	in := `[
		{"mode": "city", "city": "Jaisalmer"},
		{"mode": "coords", "latitude": 26.9, "longitude": 70.9, "delta": 0.1, "year": 2020},
		{"mode": "city", "city": "Jodhpur", "capacity_mw": 10, "price": 6}
	]`
	sites, err := parseSites(strings.NewReader(in), defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sites) != 3 {
		t.Fatalf("expected 3 sites, got %d", len(sites))
	}

	if sites[0].Mode != domain.ModeCity || sites[0].Delta != 0.3 || sites[0].Step != 0.05 || sites[0].Year != 2023 {
		t.Errorf("site 0 not defaulted: %+v", sites[0])
	}
	if sites[1].Mode != domain.ModeCoords || sites[1].Latitude != 26.9 || sites[1].Delta != 0.1 || sites[1].Year != 2020 {
		t.Errorf("site 1: %+v", sites[1])
	}
	if sites[2].CapacityMW != 10 || sites[2].Price != 6 {
		t.Errorf("site 2: %+v", sites[2])
	}
}

func TestParseSites_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":              `[]`,
		"not json":           `{`,
		"coords missing lon": `[{"mode": "coords", "latitude": 1}]`,
		"missing mode":       `[{"city": "Jaisalmer"}]`,
		"no mode no center":  `[{}]`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseSites(strings.NewReader(in), defaults); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseSites_SamePolicyAsAPI(t *testing.T) {
	_, err := parseSites(strings.NewReader(`[{"mode": "coords", "latitude": 1}]`), defaults)
	if !errors.Is(err, domain.ErrInvalidParameters) {
		t.Errorf("expected ErrInvalidParameters, got %v", err)
	}
	_, err = parseSites(strings.NewReader(`[{"city": "Jaisalmer"}]`), defaults)
	if !errors.Is(err, domain.ErrInvalidParameters) {
		t.Errorf("expected missing mode to be rejected, got %v", err)
	}
}

