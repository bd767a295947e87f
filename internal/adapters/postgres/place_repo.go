package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/ports"
)

var _ ports.PlaceRepository = (*PlaceRepo)(nil)

var placeColumns = []string{"name", "ascii_name", "latitude", "longitude"}

// PlaceRepo implements ports.PlaceRepository with pgx.
type PlaceRepo struct {
	conn Conn
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(conn Conn) *PlaceRepo {
	return &PlaceRepo{conn: conn}
}

// LoadPlaces returns every place in import order.
func (r *PlaceRepo) LoadPlaces(ctx context.Context) ([]domain.GazetteerEntry, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT name, ascii_name, latitude, longitude
		FROM places
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()

	var places []domain.GazetteerEntry
	for rows.Next() {
		var p domain.GazetteerEntry
		if err := rows.Scan(&p.Name, &p.ASCIIName, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// ReplaceAll truncates the table and bulk-loads places with COPY inside
// one transaction, so readers never see a partial gazetteer.
func (r *PlaceRepo) ReplaceAll(ctx context.Context, places []domain.GazetteerEntry) (int64, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}

	n, err := replacePlaces(ctx, tx, places)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func replacePlaces(ctx context.Context, tx pgx.Tx, places []domain.GazetteerEntry) (int64, error) {
	if _, err := tx.Exec(ctx, `TRUNCATE places RESTART IDENTITY`); err != nil {
		return 0, fmt.Errorf("truncate places: %w", err)
	}

	rows := make([][]any, len(places))
	for i, p := range places {
		rows[i] = []any{p.Name, p.ASCIIName, p.Latitude, p.Longitude}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"places"}, placeColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy places: %w", err)
	}
	return n, nil
}

// Count returns the number of stored places.
func (r *PlaceRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn.QueryRow(ctx, `SELECT count(*) FROM places`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count places: %w", err)
	}
	return n, nil
}
