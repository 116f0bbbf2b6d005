package domain

import "math"

// CostModel holds the per-kilometer parameters used to turn distances into
// time and money. TrafficAllowanceMinutes is added to every leg.
type CostModel struct {
	CostPerKm               float64
	OverheadRate            float64
	FuelEfficiencyPercent   float64
	MinutesPerKm            float64
	TrafficAllowanceMinutes float64
}

func DefaultCostModel() CostModel {
	return CostModel{
		CostPerKm:             0.8,
		OverheadRate:          0.2,
		FuelEfficiencyPercent: 85,
		MinutesPerKm:          1.5,
	}
}

// Validate rejects negative and non-finite parameters.
func (m CostModel) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"cost_per_km", m.CostPerKm},
		{"overhead_rate", m.OverheadRate},
		{"fuel_efficiency_percent", m.FuelEfficiencyPercent},
		{"minutes_per_km", m.MinutesPerKm},
		{"traffic_allowance_minutes", m.TrafficAllowanceMinutes},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ValidationError{Field: f.name, Reason: "must be a finite number"}
		}
		if f.value < 0 {
			return &ValidationError{Field: f.name, Reason: "must be non-negative"}
		}
	}
	return nil
}
