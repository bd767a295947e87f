package pvgis_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samirrijal/solarsite/internal/adapters/pvgis"
	"github.com/samirrijal/solarsite/internal/core/domain"
)

const basicBody = `year	month	H(h)_m
2023	Jan	 145.32
2023	Feb	 152.10
2023	Mar	 198.44
2023	Apr	 214.90
2023	May	 231.05
2023	Jun	 220.18
2023	Jul	 190.67
2023	Aug	 182.33
2023	Sep	 180.01
2023	Oct	 171.40
2023	Nov	 148.22
2023	Dec	 139.76
`

func newClient(url string) *pvgis.Client {
	return pvgis.New(pvgis.WithBaseURL(url), pvgis.WithRetry(3, time.Millisecond))
}

func TestMonthlyIrradiance_Success(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		fmt.Fprint(w, basicBody)
	}))
	defer srv.Close()

	values, err := newClient(srv.URL).MonthlyIrradiance(context.Background(), domain.Coordinate{Lat: 26.9, Lon: 70.95}, 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 12 {
		t.Fatalf("expected 12 values, got %d", len(values))
	}
	if values[0] != 145.32 || values[11] != 139.76 {
		t.Errorf("unexpected values %v", values)
	}
	for _, want := range []string{"lat=26.9", "lon=70.95", "horirrad=1", "startyear=2023", "endyear=2023", "outputformat=basic"} {
		if !strings.Contains(query, want) {
			t.Errorf("expected %q in query %q", want, query)
		}
	}
}

func TestMonthlyIrradiance_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, basicBody)
	}))
	defer srv.Close()

	values, err := newClient(srv.URL).MonthlyIrradiance(context.Background(), domain.Coordinate{Lat: 1, Lon: 2}, 2022)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 12 {
		t.Errorf("expected 12 values, got %d", len(values))
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestMonthlyIrradiance_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).MonthlyIrradiance(context.Background(), domain.Coordinate{}, 2023)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestMonthlyIrradiance_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Location over the sea"}`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).MonthlyIrradiance(context.Background(), domain.Coordinate{Lat: 0, Lon: -30}, 2023)
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status 400 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestMonthlyIrradiance_MultiYearBodyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, basicBody+strings.ReplaceAll(basicBody, "2023", "2022"))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).MonthlyIrradiance(context.Background(), domain.Coordinate{}, 2022)
	if err == nil {
		t.Fatal("expected error for 24 values")
	}
}

func TestMonthlyIrradiance_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newClient(srv.URL).MonthlyIrradiance(ctx, domain.Coordinate{}, 2023)
	if err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("cancellation not honoured, took %s", time.Since(start))
	}
}

func TestParseMonthly(t *testing.T) {
	values, err := pvgis.ParseMonthly([]byte(basicBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	if sum < 2174.37 || sum > 2174.39 {
		t.Errorf("unexpected sum %v", sum)
	}

	if _, err := pvgis.ParseMonthly([]byte("year\tmonth\tH(h)_m\n2023\tJan\t10.5\n")); err == nil {
		t.Error("expected error for a single value")
	}
}
