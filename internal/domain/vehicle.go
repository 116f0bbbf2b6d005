package domain

import "fmt"

// Delivery vehicle with the load limits a route must respect.
// A zero capacity means the vehicle does not declare that limit.
type Vehicle struct {
	ID          string
	Plate       string
	MaxWeightKg float64
	MaxVolumeM3 float64
}

func NewVehicle(id string, maxWeightKg, maxVolumeM3 float64) (*Vehicle, error) {
	if id == "" {
		return nil, &ValidationError{Field: "vehicle_id", Reason: "must be non-empty"}
	}
	if maxWeightKg < 0 || maxVolumeM3 < 0 {
		return nil, &ValidationError{
			Field:  "vehicle_capacity",
			Reason: fmt.Sprintf("vehicle %s capacity must be non-negative (weight=%g volume=%g)", id, maxWeightKg, maxVolumeM3),
		}
	}

	return &Vehicle{ID: id, MaxWeightKg: maxWeightKg, MaxVolumeM3: maxVolumeM3}, nil
}

// Constraints returns the route constraints implied by the vehicle capacity.
func (v *Vehicle) Constraints() RouteConstraints {
	var c RouteConstraints
	if v.MaxWeightKg > 0 {
		c.MaxWeight = Number(v.MaxWeightKg)
	}
	if v.MaxVolumeM3 > 0 {
		c.MaxVolume = Number(v.MaxVolumeM3)
	}
	return c
}

// Merge fills the limits missing from explicit with the vehicle capacity.
// Explicit limits win; a request can tighten or relax what the vehicle declares.
func (v *Vehicle) Merge(explicit RouteConstraints) RouteConstraints {
	out := v.Constraints()
	if explicit.MaxWeight != nil {
		out.MaxWeight = explicit.MaxWeight
	}
	if explicit.MaxVolume != nil {
		out.MaxVolume = explicit.MaxVolume
	}
	return out
}
