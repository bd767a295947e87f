package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samirrijal/solarsite/internal/adapters/gazetteer"
	"github.com/samirrijal/solarsite/internal/core/domain"
)

type placeStore interface {
	ReplaceAll(ctx context.Context, places []domain.GazetteerEntry) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// importPlaces decodes r into store and returns the row count the table
// reports afterwards.
func importPlaces(ctx context.Context, store placeStore, r io.Reader) (int64, error) {
	entries, err := gazetteer.Decode(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	copied, err := store.ReplaceAll(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("replace: %w", err)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	if total != copied {
		return total, fmt.Errorf("places table holds %d rows after copying %d", total, copied)
	}
	slog.Info("places replaced", "decoded", len(entries), "copied", copied, "table_rows", total)
	return total, nil
}
