package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/usecases"
	"github.com/samirrijal/solarsite/internal/pkg/config"
)

// parseSites reads a JSON array of sites shaped like the POST /v1/analyze
// body and applies the configured defaults to each.
func parseSites(r io.Reader, d config.DefaultsConfig) ([]domain.AnalysisRequest, error) {
	var raw []usecases.AnalysisInput
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode sites: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no sites given")
	}

	out := make([]domain.AnalysisRequest, 0, len(raw))
	for i, in := range raw {
		req, err := in.WithDefaults(usecases.AnalysisDefaults(d))
		if err != nil {
			return nil, fmt.Errorf("site %d: %w", i, err)
		}
		out = append(out, req)
	}
	return out, nil
}
