package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

type fakeStore struct {
	replaceAllFn func(ctx context.Context, places []domain.GazetteerEntry) (int64, error)
	countFn      func(ctx context.Context) (int64, error)
}

func (f *fakeStore) ReplaceAll(ctx context.Context, places []domain.GazetteerEntry) (int64, error) {
	return f.replaceAllFn(ctx, places)
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) {
	return f.countFn(ctx)
}

const twoCities = "name,asciiname,latitude,longitude\n" +
	"Jaisalmer,Jaisalmer,26.91763,70.91271\n" +
	"Paris,Paris,48.85341,2.3488\n"

func TestImportPlaces_ReportsTableCount(t *testing.T) {
	var copied []domain.GazetteerEntry
	counted := false
	store := &fakeStore{
		replaceAllFn: func(ctx context.Context, places []domain.GazetteerEntry) (int64, error) {
			copied = places
			return int64(len(places)), nil
		},
		countFn: func(ctx context.Context) (int64, error) {
			counted = true
			return int64(len(copied)), nil
		},
	}

	n, err := importPlaces(context.Background(), store, strings.NewReader(twoCities))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(copied) != 2 {
		t.Errorf("expected 2 rows, got n=%d copied=%d", n, len(copied))
	}
	if !counted {
		t.Error("expected Count after ReplaceAll")
	}
}

func TestImportPlaces_Errors(t *testing.T) {
	ok := func(ctx context.Context, places []domain.GazetteerEntry) (int64, error) {
		return int64(len(places)), nil
	}
	tests := []struct {
		name    string
		store   *fakeStore
		wantErr string
	}{
		{
			"replace fails",
			&fakeStore{
				replaceAllFn: func(ctx context.Context, places []domain.GazetteerEntry) (int64, error) {
					return 0, errors.New("copy aborted")
				},
				countFn: func(ctx context.Context) (int64, error) {
					t.Error("Count must not run after a failed replace")
					return 0, nil
				},
			},
			"replace: copy aborted",
		},
		{
			"count fails",
			&fakeStore{
				replaceAllFn: ok,
				countFn: func(ctx context.Context) (int64, error) {
					return 0, errors.New("conn reset")
				},
			},
			"count: conn reset",
		},
		{
			"count disagrees",
			&fakeStore{
				replaceAllFn: ok,
				countFn: func(ctx context.Context) (int64, error) {
					return 5, nil
				},
			},
			"holds 5 rows after copying 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importPlaces(context.Background(), tt.store, strings.NewReader(twoCities))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
