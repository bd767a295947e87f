package usecases

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/ports"
	"github.com/samirrijal/solarsite/internal/pkg/logging"
	"github.com/samirrijal/solarsite/internal/pkg/metrics"
	"github.com/samirrijal/solarsite/internal/pkg/telemetry"
)

// Sweep is the outcome of one grid sweep.
type Sweep struct {
	Best    domain.SamplePoint
	Tiers   domain.TierBuckets
	Summary domain.SweepSummary
}

// GridSampler samples irradiance over a lattice around a center point.
type GridSampler struct {
	source      ports.IrradianceSource
	concurrency int
	timeout     time.Duration
	maxCells    int
}

// SamplerOption configures a GridSampler.
type SamplerOption func(*GridSampler)

// WithConcurrency bounds the number of in-flight cell fetches.
func WithConcurrency(n int) SamplerOption {
	return func(s *GridSampler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSweepTimeout bounds the wall-clock time of a whole sweep. Cells not
// fetched by then count as failed.
func WithSweepTimeout(d time.Duration) SamplerOption {
	return func(s *GridSampler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxCells rejects lattices with more cells than n.
func WithMaxCells(n int) SamplerOption {
	return func(s *GridSampler) {
		if n > 0 {
			s.maxCells = n
		}
	}
}

// NewGridSampler creates a GridSampler reading from source.
func NewGridSampler(source ports.IrradianceSource, opts ...SamplerOption) *GridSampler {
	s := &GridSampler{
		source:      source,
		concurrency: 8,
		timeout:     90 * time.Second,
		maxCells:    2500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type cellResult struct {
	monthly  []float64
	average  float64
	err      error
	timedOut bool
}

// Sample fetches every lattice cell, classifies the successful ones and
// picks the maximum. Fetches run concurrently but results are folded in
// lattice order, so the first cell reaching the maximum wins ties.
func (s *GridSampler) Sample(ctx context.Context, center domain.Coordinate, delta, step float64, year int) (*Sweep, error) {
	n, err := AxisSize(delta, step)
	if err != nil {
		return nil, err
	}
	if n*n > s.maxCells {
		return nil, fmt.Errorf("%w: lattice of %d cells exceeds limit of %d", domain.ErrInvalidParameters, n*n, s.maxCells)
	}
	cells, err := Lattice(center, delta, step)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSweep)
	defer span.End()
	span.SetAttributes(attribute.Int(telemetry.AttrCells, len(cells)), attribute.Int(telemetry.AttrYear, year))

	start := time.Now()
	sweepCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]cellResult, len(cells))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, c := range cells {
		if sweepCtx.Err() != nil {
			results[i] = cellResult{err: sweepCtx.Err(), timedOut: true}
			continue
		}
		g.Go(func() error {
			results[i] = s.fetchCell(sweepCtx, c, year)
			return nil
		})
	}
	_ = g.Wait()

	sweep := fold(cells, results)

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	metrics.SweepCells.Observe(float64(len(cells)))
	span.SetAttributes(
		attribute.Int(telemetry.AttrCellsSampled, sweep.Summary.CellsSampled),
		attribute.Int(telemetry.AttrCellsFailed, sweep.Summary.CellsFailed),
		attribute.Bool(telemetry.AttrTruncated, sweep.Summary.Truncated),
	)

	if sweep.Summary.CellsSampled == 0 {
		err := fmt.Errorf("%w: %d of %d cells failed", domain.ErrAllSamplesFailed, sweep.Summary.CellsFailed, len(cells))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Float64(telemetry.AttrBestAverage, sweep.Best.Average))
	return sweep, nil
}

func (s *GridSampler) fetchCell(ctx context.Context, c domain.Coordinate, year int) cellResult {
	log := logging.FromContext(ctx)

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanCellFetch)
	defer span.End()
	span.SetAttributes(attribute.Float64(telemetry.AttrCellLat, c.Lat), attribute.Float64(telemetry.AttrCellLon, c.Lon))

	monthly, err := s.source.MonthlyIrradiance(ctx, c, year)
	if err == nil {
		err = checkMonthly(monthly)
	}
	if err != nil {
		res := cellResult{err: fmt.Errorf("%w: %v", domain.ErrCellFetchFailure, err)}
		outcome := "failed"
		if ctx.Err() != nil {
			res.timedOut = true
			outcome = "timeout"
		}
		metrics.CellFetches.WithLabelValues(outcome).Inc()
		span.SetAttributes(attribute.String(telemetry.AttrCellOutcome, outcome))
		span.SetStatus(codes.Error, err.Error())
		log.Debug("cell fetch failed", "lat", c.Lat, "lon", c.Lon, "year", year, "error", err)
		return res
	}

	metrics.CellFetches.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.String(telemetry.AttrCellOutcome, "ok"))
	return cellResult{monthly: monthly, average: MonthlyAverage(monthly)}
}

func checkMonthly(monthly []float64) error {
	if len(monthly) != 12 {
		return fmt.Errorf("expected 12 monthly values, got %d", len(monthly))
	}
	for i, v := range monthly {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite value for month %d", i+1)
		}
	}
	return nil
}

// fold accumulates results in lattice order on a single goroutine.
func fold(cells []domain.Coordinate, results []cellResult) *Sweep {
	sweep := &Sweep{
		Tiers:   make(domain.TierBuckets, len(domain.Tiers)),
		Summary: domain.SweepSummary{CellsTotal: len(cells)},
	}
	for _, t := range domain.Tiers {
		sweep.Tiers[t] = []domain.SamplePoint{}
	}

	found := false
	for i, r := range results {
		if r.err != nil {
			sweep.Summary.CellsFailed++
			if r.timedOut {
				sweep.Summary.Truncated = true
			}
			continue
		}
		p := domain.SamplePoint{Coordinate: cells[i], Monthly: r.monthly, Average: r.average}
		tier := Classify(p.Average)
		sweep.Tiers[tier] = append(sweep.Tiers[tier], p)
		metrics.TierPoints.WithLabelValues(string(tier)).Inc()
		sweep.Summary.CellsSampled++

		if !found || p.Average > sweep.Best.Average {
			sweep.Best = p
			found = true
		}
	}
	return sweep
}
