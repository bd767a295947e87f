package ports

import (
	"context"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

// IrradianceSource returns the twelve monthly irradiance values for a
// coordinate and year.
type IrradianceSource interface {
	MonthlyIrradiance(ctx context.Context, c domain.Coordinate, year int) ([]float64, error)
}

// ReverseGeocoder resolves a coordinate to the nearest named place.
// The returned coordinate is the place's own position.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, c domain.Coordinate) (domain.Address, domain.Coordinate, error)
}

// EventPublisher publishes analysis events to a message broker.
type EventPublisher interface {
	PublishAnalysisEvent(ctx context.Context, event *domain.AnalysisEvent) error
}
