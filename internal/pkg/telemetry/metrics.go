package telemetry

// Span and attribute names used for tracing.
const (
	TracerName = "github.com/samirrijal/solarsite"

	SpanAnalyze    = "analysis.run"
	SpanSweep      = "sweep.sample"
	SpanCellFetch  = "sweep.cell"
	SpanSettlement = "settlement.resolve"
	SpanBatch      = "batch.analyze"

	AttrCells        = "sweep.cells"
	AttrCellsSampled = "sweep.cells_sampled"
	AttrCellsFailed  = "sweep.cells_failed"
	AttrTruncated    = "sweep.truncated"
	AttrBestAverage  = "sweep.best_average"
	AttrCellLat      = "cell.lat"
	AttrCellLon      = "cell.lon"
	AttrCellOutcome  = "cell.outcome"
	AttrMode         = "analysis.mode"
	AttrYear         = "analysis.year"
)
