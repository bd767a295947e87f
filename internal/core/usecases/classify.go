package usecases

import "github.com/samirrijal/solarsite/internal/core/domain"

// Tier thresholds in kWh/m² per month. Lower bounds are inclusive.
const (
	ModerateThreshold  = 100.0
	GoodThreshold      = 150.0
	ExcellentThreshold = 200.0
)

// Classify buckets a monthly irradiance average into a feasibility tier.
func Classify(average float64) domain.Tier {
	switch {
	case average < ModerateThreshold:
		return domain.TierUnfeasible
	case average < GoodThreshold:
		return domain.TierModerate
	case average < ExcellentThreshold:
		return domain.TierGood
	default:
		return domain.TierExcellent
	}
}

// MonthlyAverage returns sum(monthly)/12.
func MonthlyAverage(monthly []float64) float64 {
	var sum float64
	for _, v := range monthly {
		sum += v
	}
	return sum / 12
}
