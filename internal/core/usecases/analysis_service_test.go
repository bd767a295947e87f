package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/ports"
	"github.com/samirrijal/solarsite/internal/core/usecases"
	"github.com/samirrijal/solarsite/internal/pkg/geospatial"
)

func newAnalysisService(src *mockIrradiance, geo *mockGeocoder, pub *mockPublisher) *usecases.AnalysisService {
	var g ports.ReverseGeocoder
	if geo != nil {
		g = geo
	}
	var p ports.EventPublisher
	if pub != nil {
		p = pub
	}
	sampler := usecases.NewGridSampler(src, usecases.WithConcurrency(4))
	return usecases.NewAnalysisService(usecases.NewGazetteer(places), sampler, g, p)
}

func cityRequest(city string) domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Mode:       domain.ModeCity,
		City:       city,
		Delta:      0.1,
		Step:       0.05,
		CapacityMW: 5,
		Price:      7.5,
		Year:       2023,
	}
}

func TestAnalysisService_CityMode(t *testing.T) {
	src := &mockIrradiance{
		monthlyFn: func(ctx context.Context, c domain.Coordinate, year int) ([]float64, error) {
			if year != 2023 {
				t.Errorf("expected year 2023, got %d", year)
			}
			return flat(180 + (c.Lat-26.9)*100), nil
		},
	}
	settlementAt := domain.Coordinate{Lat: 27.0, Lon: 71.0}
	geo := &mockGeocoder{
		reverseFn: func(ctx context.Context, c domain.Coordinate) (domain.Address, domain.Coordinate, error) {
			return domain.Address{Village: "Khuri"}, settlementAt, nil
		},
	}
	pub := &mockPublisher{}
	svc := newAnalysisService(src, geo, pub)

	res, err := svc.Analyze(context.Background(), cityRequest("JAISALMER"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Center != (domain.Coordinate{Lat: 26.91763, Lon: 70.91271}) {
		t.Errorf("unexpected center %+v", res.Center)
	}
	if res.Sweep.CellsTotal != 25 {
		t.Errorf("expected 25 cells, got %d", res.Sweep.CellsTotal)
	}
	if res.Best.Coordinate.Lat != res.Center.Lat+0.1 {
		t.Errorf("expected best on the northern edge, got %+v", res.Best.Coordinate)
	}
	if geo.calls != 1 {
		t.Errorf("expected a single reverse lookup, got %d", geo.calls)
	}
	if res.Settlement == nil || res.Settlement.Name != "Khuri" || res.Settlement.Coordinate != settlementAt {
		t.Fatalf("unexpected settlement %+v", res.Settlement)
	}
	if res.Economics == nil {
		t.Fatal("expected economics")
	}
	wantKm := geospatial.Haversine(res.Best.Coordinate.Lat, res.Best.Coordinate.Lon, settlementAt.Lat, settlementAt.Lon)
	if res.Economics.DistanceKm != wantKm {
		t.Errorf("expected distance %v, got %v", wantKm, res.Economics.DistanceKm)
	}
	if res.Economics.TransmissionCost != wantKm*1.8 {
		t.Errorf("expected transmission %v, got %v", wantKm*1.8, res.Economics.TransmissionCost)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
	if res.ID == "" {
		t.Error("expected analysis id")
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Status != domain.AnalysisCompleted || ev.ID != res.ID || ev.Settlement != "Khuri" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Best == nil || ev.Best.Monthly != nil {
		t.Errorf("expected best point without monthly series in event, got %+v", ev.Best)
	}
}

func TestAnalysisService_CoordsMode(t *testing.T) {
	svc := newAnalysisService(&mockIrradiance{}, &mockGeocoder{}, nil)

	req := domain.AnalysisRequest{
		Mode: domain.ModeCoords, Latitude: -23.5, Longitude: 133.9,
		Delta: 0.05, Step: 0.05, CapacityMW: 10, Price: 8, Year: 2020,
	}
	res, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Center != (domain.Coordinate{Lat: -23.5, Lon: 133.9}) {
		t.Errorf("unexpected center %+v", res.Center)
	}
	if res.Sweep.CellsTotal != 9 {
		t.Errorf("expected 9 cells, got %d", res.Sweep.CellsTotal)
	}
	if len(res.Tiers[domain.TierModerate]) != 9 {
		t.Errorf("expected 9 moderate points, got %d", len(res.Tiers[domain.TierModerate]))
	}
	if res.Economics == nil || res.Economics.DistanceKm != 0 {
		t.Errorf("expected zero-distance economics, got %+v", res.Economics)
	}
}

func TestAnalysisService_InvalidParameters(t *testing.T) {
	src := &mockIrradiance{}
	svc := newAnalysisService(src, &mockGeocoder{}, nil)

	cases := map[string]func(r *domain.AnalysisRequest){
		"zero delta":     func(r *domain.AnalysisRequest) { r.Delta = 0 },
		"negative step":  func(r *domain.AnalysisRequest) { r.Step = -0.05 },
		"bad mode":       func(r *domain.AnalysisRequest) { r.Mode = "zip" },
		"bad latitude":   func(r *domain.AnalysisRequest) { r.Mode = domain.ModeCoords; r.Latitude = 91 },
		"bad longitude":  func(r *domain.AnalysisRequest) { r.Mode = domain.ModeCoords; r.Longitude = -181 },
		"negative price": func(r *domain.AnalysisRequest) { r.Price = -1 },
		"negative power": func(r *domain.AnalysisRequest) { r.CapacityMW = -5 },
		"year":           func(r *domain.AnalysisRequest) { r.Year = 1800 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := cityRequest("Jaisalmer")
			mutate(&req)
			_, err := svc.Analyze(context.Background(), req)
			if !errors.Is(err, domain.ErrInvalidParameters) {
				t.Fatalf("expected ErrInvalidParameters, got %v", err)
			}
		})
	}
	if src.Calls() != 0 {
		t.Errorf("expected no irradiance fetches, got %d", src.Calls())
	}
}

func TestAnalysisService_CityNotFound(t *testing.T) {
	src := &mockIrradiance{}
	pub := &mockPublisher{}
	svc := newAnalysisService(src, &mockGeocoder{}, pub)

	for _, city := range []string{"", "Atlantis"} {
		_, err := svc.Analyze(context.Background(), cityRequest(city))
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("city %q: expected ErrNotFound, got %v", city, err)
		}
	}
	if src.Calls() != 0 {
		t.Errorf("expected no irradiance fetches, got %d", src.Calls())
	}
	if len(pub.events) != 2 || pub.events[0].Status != domain.AnalysisFailed {
		t.Errorf("expected failed events, got %+v", pub.events)
	}
}

func TestAnalysisService_AllSamplesFailedSkipsSettlement(t *testing.T) {
	src := &mockIrradiance{
		monthlyFn: func(ctx context.Context, c domain.Coordinate, year int) ([]float64, error) {
			return nil, errors.New("pvgis down")
		},
	}
	geo := &mockGeocoder{}
	svc := newAnalysisService(src, geo, nil)

	_, err := svc.Analyze(context.Background(), cityRequest("Jaisalmer"))
	if !errors.Is(err, domain.ErrAllSamplesFailed) {
		t.Fatalf("expected ErrAllSamplesFailed, got %v", err)
	}
	if geo.calls != 0 {
		t.Errorf("expected no settlement lookup, got %d", geo.calls)
	}
}

func TestAnalysisService_SettlementFailureIsSoft(t *testing.T) {
	geo := &mockGeocoder{
		reverseFn: func(ctx context.Context, c domain.Coordinate) (domain.Address, domain.Coordinate, error) {
			return domain.Address{}, domain.Coordinate{}, errors.New("nominatim timeout")
		},
	}
	svc := newAnalysisService(&mockIrradiance{}, geo, nil)

	res, err := svc.Analyze(context.Background(), cityRequest("Jaisalmer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Settlement != nil || res.Economics != nil {
		t.Errorf("expected no settlement or economics, got %+v / %+v", res.Settlement, res.Economics)
	}
	if len(res.Warnings) != 2 || !strings.Contains(res.Warnings[0], "settlement lookup failed") {
		t.Errorf("unexpected warnings %v", res.Warnings)
	}
}

func TestAnalysisService_NoGeocoder(t *testing.T) {
	svc := newAnalysisService(&mockIrradiance{}, nil, nil)

	res, err := svc.Analyze(context.Background(), cityRequest("Jaisalmer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Settlement != nil {
		t.Errorf("expected no settlement, got %+v", res.Settlement)
	}
}

func TestAnalysisService_InvalidEconomicsIsWarning(t *testing.T) {
	svc := newAnalysisService(&mockIrradiance{}, &mockGeocoder{}, nil)

	req := cityRequest("Jaisalmer")
	req.Price = 3.74
	res, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Settlement == nil {
		t.Fatal("expected settlement")
	}
	if res.Economics != nil {
		t.Errorf("expected no economics, got %+v", res.Economics)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "invalid economics input") {
		t.Errorf("unexpected warnings %v", res.Warnings)
	}
}

func TestAnalysisService_PublishFailureIgnored(t *testing.T) {
	pub := &mockPublisher{publishFn: func(ctx context.Context, e *domain.AnalysisEvent) error {
		return errors.New("nats disconnected")
	}}
	svc := newAnalysisService(&mockIrradiance{}, &mockGeocoder{}, pub)

	if _, err := svc.Analyze(context.Background(), cityRequest("Jaisalmer")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.events) != 1 {
		t.Errorf("expected publish attempt, got %d", len(pub.events))
	}
}
