package ports

import (
	"context"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

// PlaceSource loads the gazetteer table in source insertion order.
type PlaceSource interface {
	LoadPlaces(ctx context.Context) ([]domain.GazetteerEntry, error)
}

// PlaceRepository persists gazetteer entries.
type PlaceRepository interface {
	PlaceSource
	ReplaceAll(ctx context.Context, places []domain.GazetteerEntry) (int64, error)
	Count(ctx context.Context) (int64, error)
}
