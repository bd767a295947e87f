package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

// DefaultBatchConcurrency bounds the sites analyzed at once.
const DefaultBatchConcurrency = 4

// BatchInput is the input for the feasibility batch workflow.
// Sites must already carry every default.
type BatchInput struct {
	BatchID     string
	Sites       []domain.AnalysisRequest
	Concurrency int
}

// SiteOutcome is the result of one site. Exactly one of Result and
// Error is set.
type SiteOutcome struct {
	Index     int                    `json:"index"`
	Request   domain.AnalysisRequest `json:"request"`
	Result    *domain.AnalysisResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	ErrorType string                 `json:"error_type,omitempty"`
}

// BatchResult lists outcomes in input order.
type BatchResult struct {
	BatchID   string        `json:"batch_id"`
	Outcomes  []SiteOutcome `json:"outcomes"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// FeasibilityBatchWorkflow analyzes every site as an AnalyzeSite
// activity, at most input.Concurrency at a time. A failing site does
// not fail the batch.
func FeasibilityBatchWorkflow(ctx workflow.Context, input BatchInput) (*BatchResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting feasibility batch", "batchID", input.BatchID, "sites", len(input.Sites))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 3 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			BackoffCoefficient:     2,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidParameters, ErrTypeNotFound},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	limit := input.Concurrency
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}

	result := &BatchResult{
		BatchID:  input.BatchID,
		Outcomes: make([]SiteOutcome, len(input.Sites)),
	}

	sel := workflow.NewSelector(ctx)
	pending := 0
	for i, site := range input.Sites {
		if pending == limit {
			sel.Select(ctx)
			pending--
		}

		i, site := i, site
		result.Outcomes[i] = SiteOutcome{Index: i, Request: site}
		f := workflow.ExecuteActivity(ctx, ActivityAnalyzeSite, site)
		sel.AddFuture(f, func(f workflow.Future) {
			var r domain.AnalysisResult
			if err := f.Get(ctx, &r); err != nil {
				result.Outcomes[i].Error = err.Error()
				var appErr *temporal.ApplicationError
				if errors.As(err, &appErr) {
					result.Outcomes[i].ErrorType = appErr.Type()
				}
				logger.Warn("site failed", "index", i, "error", err)
				return
			}
			result.Outcomes[i].Result = &r
		})
		pending++
	}
	for ; pending > 0; pending-- {
		sel.Select(ctx)
	}

	for _, o := range result.Outcomes {
		if o.Result != nil {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	logger.Info("Feasibility batch finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}
