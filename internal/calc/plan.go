package calc

import (
	"context"
	"fmt"
	"slices"

	"github.com/sells-group/basestation-calc/internal/model"
)

// Plan is a validated request with every handover value resolved. It is
// built by Prepare and never modified afterwards.
type Plan struct {
	pi           float64
	stationTypes map[int]model.StationType
	handovers    map[int]float64
	districts    []model.DistrictInput
	// external lists the station type ids whose handover came from the
	// external source.
	external []int
}

// DistrictCount returns the number of districts in the plan.
func (p *Plan) DistrictCount() int { return len(p.districts) }

// ExternalHandovers returns the ids resolved through the external source,
// ascending.
func (p *Plan) ExternalHandovers() []int { return slices.Clone(p.external) }

// Prepare validates req and resolves handover values missing from it. With
// a nil resolver every missing value is a validation failure. The returned
// Plan shares no memory with req.
func Prepare(ctx context.Context, req model.CalculationRequest, resolver *Resolver) (*Plan, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	p := &Plan{
		pi:           req.PiValue(),
		stationTypes: make(map[int]model.StationType, len(req.StationTypes)),
		handovers:    make(map[int]float64, len(req.Handovers)),
		districts:    make([]model.DistrictInput, len(req.Districts)),
	}
	for _, st := range req.StationTypes {
		p.stationTypes[st.ID] = st
	}
	// Later entries for the same station type win.
	for _, h := range req.Handovers {
		p.handovers[h.StationTypeID] = h.Value
	}
	for i, d := range req.Districts {
		d.Stations = slices.Clone(d.Stations)
		p.districts[i] = d
	}

	missing := p.missingHandovers()
	if len(missing) == 0 {
		return p, nil
	}

	if resolver == nil {
		d, ids := p.firstDistrictMissing()
		return nil, validationf(districtEntity(d), "handovers", "no handover data for %s", describeStations(ids))
	}

	resolved, err := resolver.Resolve(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, v := range resolved {
		p.handovers[id] = v
	}
	p.external = missing
	return p, nil
}

// missingHandovers returns the distinct station ids referenced by districts
// that have no handover value, ascending.
func (p *Plan) missingHandovers() []int {
	var ids []int
	for _, d := range p.districts {
		for _, id := range d.Stations {
			if _, ok := p.handovers[id]; !ok && !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

func (p *Plan) firstDistrictMissing() (string, []int) {
	for _, d := range p.districts {
		var ids []int
		for _, id := range d.Stations {
			if _, ok := p.handovers[id]; !ok && !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			slices.Sort(ids)
			return d.ID, ids
		}
	}
	return "", nil
}

func describeStations(ids []int) string {
	if len(ids) == 1 {
		return fmt.Sprintf("station type %d", ids[0])
	}
	return "station types " + formatIDs(ids)
}
