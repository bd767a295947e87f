package nominatim_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samirrijal/solarsite/internal/adapters/nominatim"
	"github.com/samirrijal/solarsite/internal/core/domain"
)

func newClient(url string) *nominatim.Client {
	return nominatim.New(
		nominatim.WithBaseURL(url),
		nominatim.WithUserAgent("solarsite-test"),
		nominatim.WithRateLimit(0),
	)
}

func TestReverse_Success(t *testing.T) {
	var gotUA, gotPath, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("format")
		fmt.Fprint(w, `{"place_id":1,"lat":"26.9157","lon":"70.9083","display_name":"Jaisalmer","address":{"town":"Jaisalmer","state":"Rajasthan"}}`)
	}))
	defer srv.Close()

	addr, at, err := newClient(srv.URL).Reverse(context.Background(), domain.Coordinate{Lat: 26.95, Lon: 70.9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Town != "Jaisalmer" || addr.City != "" {
		t.Errorf("unexpected address %+v", addr)
	}
	if at.Lat != 26.9157 || at.Lon != 70.9083 {
		t.Errorf("unexpected coordinate %+v", at)
	}
	if gotUA != "solarsite-test" {
		t.Errorf("expected custom user agent, got %q", gotUA)
	}
	if gotPath != "/reverse" || gotFormat != "json" {
		t.Errorf("unexpected request path=%q format=%q", gotPath, gotFormat)
	}
}

func TestReverse_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unable to geocode", http.StatusOK, `{"error":"Unable to geocode"}`},
		{"no address", http.StatusOK, `{"lat":"1.0","lon":"2.0"}`},
		{"bad latitude", http.StatusOK, `{"lat":"north","lon":"2.0","address":{"city":"X"}}`},
		{"malformed json", http.StatusOK, `{"lat":`},
		{"server error", http.StatusBadGateway, `oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, _, err := newClient(srv.URL).Reverse(context.Background(), domain.Coordinate{Lat: 1, Lon: 2})
			if !errors.Is(err, domain.ErrSettlementLookupFailure) {
				t.Fatalf("expected ErrSettlementLookupFailure, got %v", err)
			}
		})
	}
}

func TestReverse_CancelledWhileThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"lat":"1.0","lon":"2.0","address":{"village":"V"}}`)
	}))
	defer srv.Close()

	c := nominatim.New(nominatim.WithBaseURL(srv.URL), nominatim.WithRateLimit(0.001))
	if _, _, err := c.Reverse(context.Background(), domain.Coordinate{}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.Reverse(ctx, domain.Coordinate{})
	if !errors.Is(err, domain.ErrSettlementLookupFailure) {
		t.Fatalf("expected ErrSettlementLookupFailure, got %v", err)
	}
}
