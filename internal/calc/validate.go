package calc

import (
	"fmt"
	"math"
	"slices"

	"github.com/sells-group/basestation-calc/internal/model"
)

// MinStationsPerDistrict is the smallest station list the cluster formula
// can work with.
const MinStationsPerDistrict = 3

// Validate checks the structural and value rules of req and returns the
// first violation as a validation *Error. Districts are scanned before
// station types, and references are checked last. A station type without
// a handover entry is not a violation; Prepare resolves it.
func Validate(req model.CalculationRequest) error {
	if pi := req.PiValue(); !positive(pi) {
		return validationf("", "pi", "pi must be a finite number > 0, got %v", pi)
	}
	if len(req.StationTypes) == 0 {
		return validationf("", "stationTypes", "at least one station type is required")
	}
	if len(req.Districts) == 0 {
		return validationf("", "districts", "no districts provided")
	}

	seenDistricts := make(map[string]struct{}, len(req.Districts))
	for _, d := range req.Districts {
		entity := districtEntity(d.ID)
		if !positive(d.Area) {
			return validationf(entity, "area", "area must be > 0, got %v", d.Area)
		}
		if !positive(d.K) {
			return validationf(entity, "k", "k must be > 0, got %v", d.K)
		}
		if len(d.Stations) < MinStationsPerDistrict {
			return validationf(entity, "stations",
				"each district must include at least %d stations, got %d", MinStationsPerDistrict, len(d.Stations))
		}
		if _, dup := seenDistricts[d.ID]; dup {
			return validationf(entity, "id", "duplicate district id")
		}
		seenDistricts[d.ID] = struct{}{}
	}

	known := make(map[int]struct{}, len(req.StationTypes))
	for _, st := range req.StationTypes {
		entity := stationEntity(st.ID)
		if st.ID <= 0 {
			return validationf(entity, "id", "station type id must be a positive integer")
		}
		if !positive(st.CoverageArea) {
			return validationf(entity, "coverageArea", "coverageArea must be > 0, got %v", st.CoverageArea)
		}
		if !finite(st.HandoverMin) {
			return validationf(entity, "handoverMin", "handoverMin must be a finite number, got %v", st.HandoverMin)
		}
		if !finite(st.HandoverMax) {
			return validationf(entity, "handoverMax", "handoverMax must be a finite number, got %v", st.HandoverMax)
		}
		if _, dup := known[st.ID]; dup {
			return validationf(entity, "id", "duplicate station type id: %d", st.ID)
		}
		known[st.ID] = struct{}{}
	}

	for _, d := range req.Districts {
		var unknown []int
		for _, id := range d.Stations {
			if _, ok := known[id]; !ok && !slices.Contains(unknown, id) {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			slices.Sort(unknown)
			return validationf(districtEntity(d.ID), "stations", "unknown station type ids %s", formatIDs(unknown))
		}
	}

	for _, h := range req.Handovers {
		if _, ok := known[h.StationTypeID]; !ok {
			return validationf(stationEntity(h.StationTypeID), "handovers",
				"handover entry references an undeclared station type")
		}
		if !finite(h.Value) {
			return validationf(stationEntity(h.StationTypeID), "value",
				"handover value must be a finite number, got %v", h.Value)
		}
	}

	return nil
}

// positive is false for NaN, zero, negatives and +Inf.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatIDs(ids []int) string {
	return fmt.Sprint(ids)
}
