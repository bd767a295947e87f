package workflows

import (
	"context"
	"errors"
	"testing"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/usecases"
)

type stubIrradiance struct {
	err error
}

func (s *stubIrradiance) MonthlyIrradiance(ctx context.Context, c domain.Coordinate, year int) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float64{120, 130, 160, 180, 200, 210, 190, 170, 160, 150, 130, 120}, nil
}

func newActivities(src *stubIrradiance) *AnalysisActivities {
	gaz := usecases.NewGazetteer([]domain.GazetteerEntry{
		{Name: "Jaisalmer", ASCIIName: "Jaisalmer", Latitude: "26.91763", Longitude: "70.91271"},
	})
	svc := usecases.NewAnalysisService(gaz, usecases.NewGridSampler(src), nil, nil)
	return &AnalysisActivities{Analysis: svc}
}

func TestAnalyzeSite_Success(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := newActivities(&stubIrradiance{})
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.AnalyzeSite, citySite("Jaisalmer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res domain.AnalysisResult
	if err := val.Get(&res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Sweep.CellsTotal != 9 || res.Sweep.CellsSampled != 9 {
		t.Errorf("expected 9 sampled cells, got %+v", res.Sweep)
	}
	if res.Settlement != nil {
		t.Errorf("expected no settlement without a geocoder, got %+v", res.Settlement)
	}
}

func TestAnalyzeSite_ErrorTypes(t *testing.T) {
	tests := []struct {
		name         string
		req          domain.AnalysisRequest
		src          *stubIrradiance
		wantType     string
		nonRetryable bool
	}{
		{"unknown city", citySite("Atlantis"), &stubIrradiance{}, ErrTypeNotFound, true},
		{"bad mode", domain.AnalysisRequest{Mode: "bogus", Delta: 0.1, Step: 0.1, Year: 2023}, &stubIrradiance{}, ErrTypeInvalidParameters, true},
		{"all cells failed", citySite("Jaisalmer"), &stubIrradiance{err: errors.New("503")}, ErrTypeAllSamplesFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts testsuite.WorkflowTestSuite
			env := ts.NewTestActivityEnvironment()
			acts := newActivities(tt.src)
			env.RegisterActivity(acts)

			_, err := env.ExecuteActivity(acts.AnalyzeSite, tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			var appErr *temporal.ApplicationError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected application error, got %T: %v", err, err)
			}
			if appErr.Type() != tt.wantType {
				t.Errorf("expected type %s, got %s", tt.wantType, appErr.Type())
			}
			if appErr.NonRetryable() != tt.nonRetryable {
				t.Errorf("expected nonRetryable=%v", tt.nonRetryable)
			}
		})
	}
}
