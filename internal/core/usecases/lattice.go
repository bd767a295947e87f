package usecases

import (
	"fmt"
	"math"

	"github.com/samirrijal/solarsite/internal/core/domain"
)

// latticeEpsilon absorbs float noise in 2*delta/step so that 0.6/0.05
// counts as 12 steps, not 13.
const latticeEpsilon = 1e-9

// AxisSize returns the number of lattice points along one axis:
// ceil(2*delta/step) + 1.
func AxisSize(delta, step float64) (int, error) {
	if !(delta > 0) || !(step > 0) || math.IsInf(delta, 0) || math.IsInf(step, 0) {
		return 0, fmt.Errorf("%w: delta and step must be positive finite numbers (delta=%v, step=%v)",
			domain.ErrInvalidParameters, delta, step)
	}
	ratio := 2 * delta / step
	steps := math.Ceil(ratio - latticeEpsilon*math.Max(1, ratio))
	if steps > math.MaxInt32 {
		return 0, fmt.Errorf("%w: lattice too large (delta=%v, step=%v)", domain.ErrInvalidParameters, delta, step)
	}
	return int(steps) + 1, nil
}

// axisPoints enumerates center-delta .. center+delta ascending. The last
// point is pinned to center+delta even when the final step is short.
func axisPoints(center, delta, step float64, n int) []float64 {
	lo := center - delta
	pts := make([]float64, n)
	for k := range pts {
		pts[k] = lo + float64(k)*step
	}
	pts[n-1] = center + delta
	return pts
}

// Lattice enumerates the sweep grid row-major: latitude outer, longitude
// inner, both ascending. The order decides maximum tie-breaks and the
// order of points inside each tier bucket.
func Lattice(center domain.Coordinate, delta, step float64) ([]domain.Coordinate, error) {
	n, err := AxisSize(delta, step)
	if err != nil {
		return nil, err
	}
	lats := axisPoints(center.Lat, delta, step, n)
	lons := axisPoints(center.Lon, delta, step, n)

	cells := make([]domain.Coordinate, 0, n*n)
	for _, lat := range lats {
		for _, lon := range lons {
			cells = append(cells, domain.Coordinate{Lat: lat, Lon: lon})
		}
	}
	return cells, nil
}
