package calc

import (
	"math"
	"slices"

	"github.com/sells-group/basestation-calc/internal/model"
)

// HandoverPenalty multiplies a district's station count when its average
// handover is below the minimum of any station type present.
const HandoverPenalty = 1.4

// clusterExponents apply to the diameters of the three largest radii,
// largest first.
var clusterExponents = [3]float64{2.5, 1.5, 0.5}

// Compute runs the engine over a prepared plan. It fails only on degenerate
// arithmetic, with a computation *Error.
func Compute(p *Plan) (*model.CalculationResponse, error) {
	resp := &model.CalculationResponse{
		DistrictResults: make([]model.DistrictResult, 0, len(p.districts)),
	}

	var total float64
	for _, d := range p.districts {
		res, err := computeDistrict(p, d)
		if err != nil {
			return nil, err
		}
		resp.DistrictResults = append(resp.DistrictResults, res)
		total += res.N
	}
	resp.TotalN = round2(total)

	return resp, nil
}

func computeDistrict(p *Plan, d model.DistrictInput) (model.DistrictResult, error) {
	r0 := radius(d.Area, p.pi)

	radii := make([]float64, len(d.Stations))
	for i, id := range d.Stations {
		radii[i] = radius(p.stationTypes[id].CoverageArea, p.pi)
	}

	l := cellsL(d.K, r0, radii)
	c := clusterC(radii)
	if c == 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return model.DistrictResult{}, computationf(districtEntity(d.ID), "degenerate cluster factor C=%v", c)
	}

	n := l / c
	avg := handoverAverage(d.Stations, p.handovers)
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return model.DistrictResult{}, computationf(districtEntity(d.ID), "handover average is not finite (avg=%v)", avg)
	}
	adjusted := needsAdjustment(avg, d.Stations, p.stationTypes)
	if adjusted {
		n *= HandoverPenalty
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return model.DistrictResult{}, computationf(districtEntity(d.ID), "station count is not finite (n=%v)", n)
	}

	return model.DistrictResult{
		DistrictID:       d.ID,
		N:                round2(n),
		HandoverAvg:      round2(avg),
		HandoverAdjusted: adjusted,
	}, nil
}

// radius returns the radius of a circle with the given area.
func radius(area, pi float64) float64 {
	return math.Sqrt(area / pi)
}

// cellsL averages Li = k*(r0/ri)^2 over every station occurrence.
func cellsL(k, r0 float64, radii []float64) float64 {
	var sum float64
	for _, ri := range radii {
		ratio := r0 / ri
		sum += k * ratio * ratio
	}
	return sum / float64(len(radii))
}

// clusterC combines the diameters of the three largest radii. The sort is
// stable, so equal radii keep their encounter order. Callers guarantee at
// least three radii.
func clusterC(radii []float64) float64 {
	top := slices.Clone(radii)
	slices.SortStableFunc(top, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		default:
			return 0
		}
	})

	var c float64
	for i, exp := range clusterExponents {
		c += math.Pow(2*top[i], exp)
	}
	return c
}

// handoverAverage averages the handover values of the distinct station
// types in stations.
func handoverAverage(stations []int, handovers map[int]float64) float64 {
	seen := make(map[int]struct{}, len(stations))
	var sum float64
	for _, id := range stations {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sum += handovers[id]
	}
	return sum / float64(len(seen))
}

// needsAdjustment reports whether avg is below the handoverMin of any
// station type present.
func needsAdjustment(avg float64, stations []int, types map[int]model.StationType) bool {
	for _, id := range stations {
		if avg < types[id].HandoverMin {
			return true
		}
	}
	return false
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
