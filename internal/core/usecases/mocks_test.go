package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

// --- Mock IrradianceSource ---

type mockIrradiance struct {
	monthlyFn func(ctx context.Context, c domain.Coordinate, year int) ([]float64, error)

	mu    sync.Mutex
	calls int
}

func (m *mockIrradiance) MonthlyIrradiance(ctx context.Context, c domain.Coordinate, year int) ([]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.monthlyFn != nil {
		return m.monthlyFn(ctx, c, year)
	}
	return flat(120), nil
}

func (m *mockIrradiance) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock ReverseGeocoder ---

type mockGeocoder struct {
	reverseFn func(ctx context.Context, c domain.Coordinate) (domain.Address, domain.Coordinate, error)
	calls     int
}

func (m *mockGeocoder) Reverse(ctx context.Context, c domain.Coordinate) (domain.Address, domain.Coordinate, error) {
	m.calls++
	if m.reverseFn != nil {
		return m.reverseFn(ctx, c)
	}
	return domain.Address{Town: "Pokaran"}, c, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	publishFn func(ctx context.Context, e *domain.AnalysisEvent) error
	events    []*domain.AnalysisEvent
}

func (m *mockPublisher) PublishAnalysisEvent(ctx context.Context, e *domain.AnalysisEvent) error {
	m.events = append(m.events, e)
	if m.publishFn != nil {
		return m.publishFn(ctx, e)
	}
	return nil
}

// flat returns twelve identical monthly values.
func flat(v float64) []float64 {
	out := make([]float64, 12)
	for i := range out {
		out[i] = v
	}
	return out
}
