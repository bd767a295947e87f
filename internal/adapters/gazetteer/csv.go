// Package gazetteer reads the geonames cities table from a headered CSV
// file (name, asciiname, latitude, longitude, plus any other columns).
package gazetteer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

type row struct {
	Name      string `csv:"name"`
	ASCIIName string `csv:"asciiname"`
	Latitude  string `csv:"latitude"`
	Longitude string `csv:"longitude"`
}

// CSVSource implements ports.PlaceSource over a file on disk.
type CSVSource struct {
	path string
}

// NewCSVSource returns a source reading path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// LoadPlaces reads every row of the file in file order.
func (s *CSVSource) LoadPlaces(ctx context.Context) ([]domain.GazetteerEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open gazetteer: %w", err)
	}
	defer f.Close()
	return Decode(ctx, f)
}

// Decode parses a headered CSV stream. Rows keep their input order;
// coordinate strings are kept verbatim and parsed at lookup time.
func Decode(ctx context.Context, r io.Reader) ([]domain.GazetteerEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("gazetteer is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	dec.DisallowMissingColumns = true

	var entries []domain.GazetteerEntry
	for {
		if len(entries)%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var rec row
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode row %d: %w", len(entries)+1, err)
		}
		entries = append(entries, domain.GazetteerEntry{
			Name:      rec.Name,
			ASCIIName: rec.ASCIIName,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
		})
	}
	return entries, nil
}
