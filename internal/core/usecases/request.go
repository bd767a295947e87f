package usecases

import (
	"fmt"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

// AnalysisDefaults fills the fields an AnalysisInput leaves out. Its
// field set mirrors config.DefaultsConfig so one converts to the other.
type AnalysisDefaults struct {
	Delta      float64
	Step       float64
	Price      float64
	CapacityMW float64
	Year       int
}

// AnalysisInput is an analysis request as callers send it: numeric
// fields may be omitted.
type AnalysisInput struct {
	Mode       string   `json:"mode"`
	City       string   `json:"city"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Delta      *float64 `json:"delta"`
	Step       *float64 `json:"step"`
	CapacityMW *float64 `json:"capacity_mw"`
	Price      *float64 `json:"price"`
	Year       *int     `json:"year"`
}

// WithDefaults returns the fully defaulted request. Mode is always
// required, and coords mode requires both latitude and longitude.
// Range checks are left to AnalysisService.
func (in AnalysisInput) WithDefaults(d AnalysisDefaults) (domain.AnalysisRequest, error) {
	req := domain.AnalysisRequest{
		Mode:       domain.CenterMode(in.Mode),
		City:       in.City,
		Delta:      floatOr(in.Delta, d.Delta),
		Step:       floatOr(in.Step, d.Step),
		CapacityMW: floatOr(in.CapacityMW, d.CapacityMW),
		Price:      floatOr(in.Price, d.Price),
		Year:       d.Year,
	}
	if in.Year != nil {
		req.Year = *in.Year
	}

	switch req.Mode {
	case "":
		return req, fmt.Errorf("%w: mode is required (%q or %q)", domain.ErrInvalidParameters, domain.ModeCity, domain.ModeCoords)
	case domain.ModeCoords:
		if in.Latitude == nil || in.Longitude == nil {
			return req, fmt.Errorf("%w: latitude and longitude are required in coords mode", domain.ErrInvalidParameters)
		}
		req.Latitude, req.Longitude = *in.Latitude, *in.Longitude
	}
	return req, nil
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
