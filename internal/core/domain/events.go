package domain

import "time"

// AnalysisStatus is the outcome carried by an AnalysisEvent.
type AnalysisStatus string

const (
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisFailed    AnalysisStatus = "failed"
)

// AnalysisEvent is broadcast when an analysis finishes.
type AnalysisEvent struct {
	ID         string         `json:"id"`
	Status     AnalysisStatus `json:"status"`
	Center     Coordinate     `json:"center"`
	Best       *SamplePoint   `json:"best,omitempty"`
	Sweep      SweepSummary   `json:"sweep"`
	Settlement string         `json:"settlement,omitempty"`
	ElapsedMs  int64          `json:"elapsed_ms"`
	Error      string         `json:"error,omitempty"`
	Time       time.Time      `json:"time"`
}
