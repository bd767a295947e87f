package usecases

import (
	"fmt"
	"math"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

const (
	// CapexPerMW is the capital cost per MW of capacity, in crore.
	CapexPerMW = 4.25
	// TransmissionPerKm is the line cost per km, in crore.
	TransmissionPerKm = 1.8
	// TariffOffset is subtracted from the unit price before revenue.
	TariffOffset = 3.74
	// CapacityFactor derates nameplate generation.
	CapacityFactor = 0.3
	// ProjectionYears is the horizon of the recovery projection.
	ProjectionYears = 10
)

// ComputeEconomics derives capex, transmission cost and payback years.
// The payback is undefined for capacityMW <= 0 or unitPrice <= TariffOffset
// and is reported as ErrInvalidEconomicsInput.
func ComputeEconomics(capacityMW, unitPrice, distanceKm float64) (*domain.Economics, error) {
	for _, v := range []float64{capacityMW, unitPrice, distanceKm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite input", domain.ErrInvalidEconomicsInput)
		}
	}
	if capacityMW <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %v MW", domain.ErrInvalidEconomicsInput, capacityMW)
	}
	if unitPrice <= TariffOffset {
		return nil, fmt.Errorf("%w: unit price must exceed %.2f, got %v", domain.ErrInvalidEconomicsInput, TariffOffset, unitPrice)
	}
	if distanceKm < 0 {
		return nil, fmt.Errorf("%w: negative distance %v km", domain.ErrInvalidEconomicsInput, distanceKm)
	}

	capex := capacityMW * CapexPerMW
	transmission := distanceKm * TransmissionPerKm
	// capacity MW * 4 h/day * 1000 kWh/MWh * 365 days * margin * derating
	recovery := capex * 1e7 / (capacityMW * 4 * 1000 * 365 * (unitPrice - TariffOffset) * CapacityFactor)

	return &domain.Economics{
		CapacityMW:         capacityMW,
		UnitPrice:          unitPrice,
		DistanceKm:         distanceKm,
		CapitalExpenditure: capex,
		TransmissionCost:   transmission,
		RecoveryYears:      recovery,
		Projection:         RecoveryProjection(recovery, ProjectionYears),
	}, nil
}

// RecoveryProjection returns the share of capex recovered at the end of
// each year 0..years, capped at 100 %.
func RecoveryProjection(recoveryYears float64, years int) []domain.RecoveryPoint {
	out := make([]domain.RecoveryPoint, 0, years+1)
	for y := 0; y <= years; y++ {
		pct := 100.0
		if recoveryYears > 0 {
			pct = math.Min(float64(y)/recoveryYears, 1) * 100
		}
		out = append(out, domain.RecoveryPoint{Year: y, RecoveredPct: pct})
	}
	return out
}
