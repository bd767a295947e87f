package domain

// Tier is a feasibility classification bucket for an irradiance average.
type Tier string

const (
	TierUnfeasible Tier = "unfeasible"
	TierModerate   Tier = "moderate"
	TierGood       Tier = "good"
	TierExcellent  Tier = "excellent"
)

// Tiers lists every tier from worst to best.
var Tiers = []Tier{TierUnfeasible, TierModerate, TierGood, TierExcellent}

// CenterMode selects how the sweep center is given.
type CenterMode string

const (
	ModeCity   CenterMode = "city"
	ModeCoords CenterMode = "coords"
)

// SamplePoint is one successfully sampled lattice cell.
type SamplePoint struct {
	Coordinate Coordinate `json:"coordinate"`
	Monthly    []float64  `json:"monthly,omitempty"`
	Average    float64    `json:"average"`
}

// TierBuckets maps each tier to its points in lattice order.
type TierBuckets map[Tier][]SamplePoint

// SweepSummary describes how much of the lattice was sampled.
type SweepSummary struct {
	CellsTotal   int  `json:"cells_total"`
	CellsSampled int  `json:"cells_sampled"`
	CellsFailed  int  `json:"cells_failed"`
	Truncated    bool `json:"truncated"`
}

// Settlement is the named place nearest to the best cell.
type Settlement struct {
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}

// Address carries the reverse-geocoded address fields the settlement
// name is picked from.
type Address struct {
	City    string `json:"city,omitempty"`
	Town    string `json:"town,omitempty"`
	Village string `json:"village,omitempty"`
	Hamlet  string `json:"hamlet,omitempty"`
}

// RecoveryPoint is one year of the capex recovery projection.
type RecoveryPoint struct {
	Year         int     `json:"year"`
	RecoveredPct float64 `json:"recovered_pct"`
}

// Economics is the capex / transmission / payback estimate.
type Economics struct {
	CapacityMW         float64         `json:"capacity_mw"`
	UnitPrice          float64         `json:"unit_price"`
	DistanceKm         float64         `json:"distance_km"`
	CapitalExpenditure float64         `json:"capital_expenditure"`
	TransmissionCost   float64         `json:"transmission_cost"`
	RecoveryYears      float64         `json:"recovery_years"`
	Projection         []RecoveryPoint `json:"projection"`
}

// AnalysisRequest is a fully defaulted analysis input.
type AnalysisRequest struct {
	Mode       CenterMode `json:"mode"`
	City       string     `json:"city,omitempty"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Delta      float64    `json:"delta"`
	Step       float64    `json:"step"`
	CapacityMW float64    `json:"capacity_mw"`
	Price      float64    `json:"price"`
	Year       int        `json:"year"`
}

// AnalysisResult is the assembled response of one analysis.
type AnalysisResult struct {
	ID         string       `json:"id"`
	Center     Coordinate   `json:"center"`
	Best       SamplePoint  `json:"best"`
	Tiers      TierBuckets  `json:"tiers"`
	Sweep      SweepSummary `json:"sweep"`
	Settlement *Settlement  `json:"settlement,omitempty"`
	Economics  *Economics   `json:"economics,omitempty"`
	Warnings   []string     `json:"warnings,omitempty"`
}
