package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/ports"
)

// Gazetteer resolves city names against a read-only table loaded once
// at startup.
type Gazetteer struct {
	entries []domain.GazetteerEntry
}

// NewGazetteer wraps an already loaded table. The slice is not copied
// and must not be modified afterwards.
func NewGazetteer(entries []domain.GazetteerEntry) *Gazetteer {
	return &Gazetteer{entries: entries}
}

// LoadGazetteer reads the whole table from src.
func LoadGazetteer(ctx context.Context, src ports.PlaceSource) (*Gazetteer, error) {
	entries, err := src.LoadPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("load places: %w", err)
	}
	return NewGazetteer(entries), nil
}

// Len returns the number of loaded places.
func (g *Gazetteer) Len() int {
	return len(g.entries)
}

// Resolve returns the coordinates of the first entry whose ASCII name
// equals name case-insensitively.
func (g *Gazetteer) Resolve(name string) (domain.Coordinate, error) {
	if name == "" {
		return domain.Coordinate{}, fmt.Errorf("%w: city name is empty", domain.ErrNotFound)
	}
	for _, e := range g.entries {
		if !strings.EqualFold(e.ASCIIName, name) {
			continue
		}
		c, ok := parseEntry(e)
		if !ok {
			continue
		}
		return c, nil
	}
	return domain.Coordinate{}, fmt.Errorf("%w: city %q", domain.ErrNotFound, name)
}

func parseEntry(e domain.GazetteerEntry) (domain.Coordinate, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(e.Latitude), 64)
	if err != nil {
		return domain.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(e.Longitude), 64)
	if err != nil {
		return domain.Coordinate{}, false
	}
	c := domain.Coordinate{Lat: lat, Lon: lon}
	return c, c.Valid()
}

// Search returns places whose ASCII name starts with prefix
// (case-insensitive), in table order, skipping entries with unusable
// coordinates. total counts every match before offset and limit apply.
func (g *Gazetteer) Search(prefix string, offset, limit int) (places []domain.Place, total int) {
	if prefix == "" || limit <= 0 {
		return nil, 0
	}
	if offset < 0 {
		offset = 0
	}
	for _, e := range g.entries {
		if len(e.ASCIIName) < len(prefix) || !strings.EqualFold(e.ASCIIName[:len(prefix)], prefix) {
			continue
		}
		c, ok := parseEntry(e)
		if !ok {
			continue
		}
		if total >= offset && len(places) < limit {
			places = append(places, domain.Place{Name: e.Name, ASCIIName: e.ASCIIName, Coordinate: c})
		}
		total++
	}
	return places, total
}
