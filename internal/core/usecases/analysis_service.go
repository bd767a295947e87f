package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/ports"
	"github.com/samirrijal/solarsite/internal/pkg/geospatial"
	"github.com/samirrijal/solarsite/internal/pkg/logging"
	"github.com/samirrijal/solarsite/internal/pkg/metrics"
	"github.com/samirrijal/solarsite/internal/pkg/telemetry"
)

const (
	minYear = 1990
	maxYear = 2100

	publishTimeout = 2 * time.Second
)

// AnalysisService runs a full feasibility analysis: center resolution,
// grid sweep, settlement lookup and economics.
type AnalysisService struct {
	gazetteer *Gazetteer
	sampler   *GridSampler
	geocoder  ports.ReverseGeocoder
	publisher ports.EventPublisher
}

// NewAnalysisService creates a new AnalysisService. geocoder and
// publisher may be nil; the settlement step or event is then skipped.
func NewAnalysisService(
	gazetteer *Gazetteer,
	sampler *GridSampler,
	geocoder ports.ReverseGeocoder,
	publisher ports.EventPublisher,
) *AnalysisService {
	return &AnalysisService{gazetteer: gazetteer, sampler: sampler, geocoder: geocoder, publisher: publisher}
}

// ResolveCity looks a city up in the gazetteer.
func (s *AnalysisService) ResolveCity(name string) (domain.Coordinate, error) {
	if s.gazetteer == nil {
		return domain.Coordinate{}, fmt.Errorf("%w: gazetteer not loaded", domain.ErrNotFound)
	}
	return s.gazetteer.Resolve(name)
}

// Analyze validates req, sweeps the grid and enriches the best cell.
// Parameter and name errors are returned before any network call.
// Settlement and economics failures only add warnings.
func (s *AnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanAnalyze)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrMode, string(req.Mode)), attribute.Int(telemetry.AttrYear, req.Year))

	log := logging.FromContext(ctx)
	start := time.Now()
	id := uuid.NewString()

	center, err := s.validate(req)
	if err != nil {
		s.finish(ctx, id, center, nil, start, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sweep, err := s.sampler.Sample(ctx, center, req.Delta, req.Step, req.Year)
	if err != nil {
		s.finish(ctx, id, center, nil, start, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := &domain.AnalysisResult{
		ID:     id,
		Center: center,
		Best:   sweep.Best,
		Tiers:  sweep.Tiers,
		Sweep:  sweep.Summary,
	}
	if sweep.Summary.Truncated {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("sweep deadline reached: %d of %d cells sampled", sweep.Summary.CellsSampled, sweep.Summary.CellsTotal))
	}

	settlement, err := s.resolveSettlement(ctx, sweep.Best.Coordinate)
	if err != nil {
		log.Warn("settlement lookup failed", "lat", sweep.Best.Coordinate.Lat, "lon", sweep.Best.Coordinate.Lon, "error", err)
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.Settlement = settlement

	if settlement != nil {
		km := geospatial.Haversine(sweep.Best.Coordinate.Lat, sweep.Best.Coordinate.Lon,
			settlement.Coordinate.Lat, settlement.Coordinate.Lon)
		econ, err := ComputeEconomics(req.CapacityMW, req.Price, km)
		if err != nil {
			result.Warnings = append(result.Warnings, "economics skipped: "+err.Error())
		}
		result.Economics = econ
	} else {
		result.Warnings = append(result.Warnings, "economics skipped: no settlement")
	}

	s.finish(ctx, id, center, result, start, nil)
	log.Info("analysis completed",
		"id", id,
		"center_lat", center.Lat,
		"center_lon", center.Lon,
		"extent_km", 2*geospatial.DegreesToKm(req.Delta),
		"cells", sweep.Summary.CellsTotal,
		"cells_failed", sweep.Summary.CellsFailed,
		"best_average", sweep.Best.Average,
		"elapsed", time.Since(start).String(),
	)
	return result, nil
}

func (s *AnalysisService) validate(req domain.AnalysisRequest) (domain.Coordinate, error) {
	for name, v := range map[string]float64{"capacity_mw": req.CapacityMW, "price": req.Price} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return domain.Coordinate{}, fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidParameters, name)
		}
	}
	if req.Year < minYear || req.Year > maxYear {
		return domain.Coordinate{}, fmt.Errorf("%w: year must be within %d-%d, got %d", domain.ErrInvalidParameters, minYear, maxYear, req.Year)
	}
	if _, err := AxisSize(req.Delta, req.Step); err != nil {
		return domain.Coordinate{}, err
	}

	switch req.Mode {
	case domain.ModeCity:
		return s.ResolveCity(req.City)
	case domain.ModeCoords:
		c := domain.Coordinate{Lat: req.Latitude, Lon: req.Longitude}
		if !c.Valid() {
			return domain.Coordinate{}, fmt.Errorf("%w: invalid coordinates (%v, %v)", domain.ErrInvalidParameters, req.Latitude, req.Longitude)
		}
		return c, nil
	default:
		return domain.Coordinate{}, fmt.Errorf("%w: mode must be %q or %q, got %q",
			domain.ErrInvalidParameters, domain.ModeCity, domain.ModeCoords, req.Mode)
	}
}

// resolveSettlement performs the single reverse lookup for the best cell.
func (s *AnalysisService) resolveSettlement(ctx context.Context, best domain.Coordinate) (*domain.Settlement, error) {
	if s.geocoder == nil {
		return nil, fmt.Errorf("%w: no reverse geocoder configured", domain.ErrSettlementLookupFailure)
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSettlement)
	defer span.End()

	addr, at, err := s.geocoder.Reverse(ctx, best)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domain.ErrSettlementLookupFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSettlementLookupFailure, err)
	}
	return &domain.Settlement{Name: SettlementName(addr), Coordinate: at}, nil
}

// finish records metrics and publishes the analysis event.
func (s *AnalysisService) finish(ctx context.Context, id string, center domain.Coordinate, result *domain.AnalysisResult, start time.Time, err error) {
	event := &domain.AnalysisEvent{
		ID:        id,
		Center:    center,
		ElapsedMs: time.Since(start).Milliseconds(),
		Time:      time.Now().UTC(),
	}
	if err != nil {
		event.Status = domain.AnalysisFailed
		event.Error = err.Error()
		metrics.AnalysesTotal.WithLabelValues(outcomeLabel(err)).Inc()
	} else {
		event.Status = domain.AnalysisCompleted
		best := result.Best
		best.Monthly = nil
		event.Best = &best
		event.Sweep = result.Sweep
		if result.Settlement != nil {
			event.Settlement = result.Settlement.Name
		}
		metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	}

	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if perr := s.publisher.PublishAnalysisEvent(pubCtx, event); perr != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		logging.FromContext(ctx).Warn("publish analysis event failed", "id", id, "error", perr)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAllSamplesFailed):
		return "all_samples_failed"
	default:
		return "error"
	}
}
