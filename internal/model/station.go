package model

import "math"

// StationType is a category of base station with its coverage area and
// handover threshold range.
type StationType struct {
	ID           int     `json:"id" yaml:"id"`
	CoverageArea float64 `json:"coverageArea" yaml:"coverageArea"`
	HandoverMin  float64 `json:"handoverMin" yaml:"handoverMin"`
	HandoverMax  float64 `json:"handoverMax" yaml:"handoverMax"`
}

// HandoverEntry supplies the handover value for one station type.
type HandoverEntry struct {
	StationTypeID int     `json:"stationTypeId" yaml:"stationTypeId"`
	Value         float64 `json:"value" yaml:"value"`
}

// DistrictInput describes one urban district. Stations lists station type
// ids in order; the same id may appear more than once.
type DistrictInput struct {
	ID       string  `json:"id" yaml:"id"`
	Area     float64 `json:"area" yaml:"area"`
	K        float64 `json:"k" yaml:"k"`
	Stations []int   `json:"stations" yaml:"stations"`
}

// CalculationRequest is the input of a single calculation.
type CalculationRequest struct {
	// Pi is the constant used in every radius formula. Nil means math.Pi.
	Pi           *float64        `json:"pi,omitempty" yaml:"pi,omitempty"`
	StationTypes []StationType   `json:"stationTypes" yaml:"stationTypes"`
	Handovers    []HandoverEntry `json:"handovers" yaml:"handovers"`
	Districts    []DistrictInput `json:"districts" yaml:"districts"`
}

// PiValue returns the caller-supplied pi or math.Pi when none was given.
func (r CalculationRequest) PiValue() float64 {
	if r.Pi == nil {
		return math.Pi
	}
	return *r.Pi
}

// DistrictResult is the computed outcome for one district.
type DistrictResult struct {
	DistrictID       string  `json:"districtId" yaml:"districtId"`
	N                float64 `json:"n" yaml:"n"`
	HandoverAvg      float64 `json:"handoverAvg" yaml:"handoverAvg"`
	HandoverAdjusted bool    `json:"handoverAdjusted" yaml:"handoverAdjusted"`
}

// CalculationResponse holds per-district results in input order and the
// aggregate station count.
type CalculationResponse struct {
	DistrictResults []DistrictResult `json:"districtResults" yaml:"districtResults"`
	TotalN          float64          `json:"totalN" yaml:"totalN"`
}
