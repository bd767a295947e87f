package workflows

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/usecases"
	"github.com/samirrijal/solarsite/internal/pkg/telemetry"
)

// Application error types reported by AnalyzeSite.
const (
	ErrTypeInvalidParameters = "InvalidParameters"
	ErrTypeNotFound          = "NotFound"
	ErrTypeAllSamplesFailed  = "AllSamplesFailed"
)

// ActivityAnalyzeSite is the registered name of AnalysisActivities.AnalyzeSite.
const ActivityAnalyzeSite = "AnalyzeSite"

// AnalysisActivities holds the activity implementations for the batch workflow.
type AnalysisActivities struct {
	Analysis *usecases.AnalysisService
}

// AnalyzeSite runs one feasibility analysis. Parameter and not-found
// errors are non-retryable; an empty sweep is retried.
func (a *AnalysisActivities) AnalyzeSite(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	logger := activity.GetLogger(ctx)
	info := activity.GetInfo(ctx)

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanBatch)
	defer span.End()
	span.SetAttributes(
		attribute.String("workflow.id", info.WorkflowExecution.ID),
		attribute.Int("activity.attempt", int(info.Attempt)),
	)

	result, err := a.Analysis.Analyze(ctx, req)
	switch {
	case err == nil:
		logger.Info("site analyzed", "id", result.ID, "best_average", result.Best.Average)
		return result, nil
	case errors.Is(err, domain.ErrInvalidParameters):
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidParameters, err)
	case errors.Is(err, domain.ErrNotFound):
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	case errors.Is(err, domain.ErrAllSamplesFailed):
		logger.Warn("no cell sampled, will retry", "error", err)
		return nil, temporal.NewApplicationError(err.Error(), ErrTypeAllSamplesFailed, err)
	default:
		return nil, err
	}
}
