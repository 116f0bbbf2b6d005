package domain

// SequenceStatus tags the outcome of a sequencing call.
type SequenceStatus string

const (
	// Every input stop was placed.
	SequenceComplete SequenceStatus = "complete"
	// Some stops could not be placed without breaking a constraint; see Excluded.
	SequencePartial SequenceStatus = "partial"
	// The starting stop alone breaks a constraint; nothing was placed.
	SequenceInfeasible SequenceStatus = "infeasible"
)

// SequenceResult is the ordered visiting sequence plus the stops left out of it.
type SequenceResult struct {
	Status   SequenceStatus  `json:"status"`
	Stops    []SequencedStop `json:"stops"`
	Excluded []Stop          `json:"excluded"`
	Reason   string          `json:"reason,omitempty"`
}

// Err converts a partial or infeasible result into a *CapacityExceededError.
// It returns nil for complete results.
func (r *SequenceResult) Err() error {
	if r == nil || r.Status == SequenceComplete {
		return nil
	}

	ids := make([]string, 0, len(r.Excluded))
	for _, s := range r.Excluded {
		ids = append(ids, s.ID)
	}
	return &CapacityExceededError{Reason: r.Reason, Excluded: ids}
}

// Distance, travel time and cost of a single leg.
type Segment struct {
	DistanceKm  float64 `json:"distance_km"`
	TimeMinutes float64 `json:"time_minutes"`
	Cost        float64 `json:"cost"`
}

// Aggregate result for a sequenced route, including the return leg when configured.
type RouteMetrics struct {
	TotalDistanceKm       float64 `json:"total_distance_km"`
	TotalTimeMinutes      int     `json:"total_time_minutes"`
	TotalTimeHours        float64 `json:"total_time_hours"`
	FuelCost              float64 `json:"fuel_cost"`
	TotalCost             float64 `json:"total_cost"`
	FuelEfficiencyPercent float64 `json:"fuel_efficiency_percent"`
}
