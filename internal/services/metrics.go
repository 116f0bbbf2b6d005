package services

import (
	"context"
	"fmt"
	"math"
	"route-sequencer-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Segment computes distance, travel time and cost of a single leg.
// Time is distance * MinutesPerKm plus the fixed per-leg traffic allowance.
func (s *RouteSequencer) Segment(ctx context.Context, origin, destination domain.Stop) (domain.Segment, error) {
	d, err := s.Distance(ctx, origin, destination)
	if err != nil {
		return domain.Segment{}, fmt.Errorf("segment: %w", err)
	}

	return domain.Segment{
		DistanceKm:  d,
		TimeMinutes: d*s.Costs.MinutesPerKm + s.Costs.TrafficAllowanceMinutes,
		Cost:        d * s.Costs.CostPerKm,
	}, nil
}

// ComputeMetrics aggregates every leg of sequence, plus the leg back to
// sequence[0] when ReturnToOrigin is set.
//
// Legs are summed unrounded; rounding is applied once to the totals
// (distance and money to 2 decimals, minutes to an integer).
func (s *RouteSequencer) ComputeMetrics(ctx context.Context, sequence []domain.SequencedStop) (domain.RouteMetrics, error) {
	var distanceKm, minutes float64

	addLeg := func(from, to domain.Stop) error {
		seg, err := s.Segment(ctx, from, to)
		if err != nil {
			return err
		}
		distanceKm += seg.DistanceKm
		minutes += seg.TimeMinutes
		return nil
	}

	for i := 0; i+1 < len(sequence); i++ {
		if err := addLeg(sequence[i].Stop, sequence[i+1].Stop); err != nil {
			return domain.RouteMetrics{}, fmt.Errorf("compute metrics: leg %d: %w", i+1, err)
		}
	}

	// Includes return leg to the start for total route metrics.
	if s.ReturnToOrigin && len(sequence) > 1 {
		last := sequence[len(sequence)-1].Stop
		if err := addLeg(last, sequence[0].Stop); err != nil {
			return domain.RouteMetrics{}, fmt.Errorf("compute metrics: return leg: %w", err)
		}
	}

	// Finite legs can still overflow when summed.
	if math.IsInf(distanceKm, 0) || math.IsInf(minutes, 0) {
		return domain.RouteMetrics{}, &domain.ValidationError{Field: "distance", Reason: "route totals overflow"}
	}

	totalDistance := decimal.NewFromFloat(distanceKm).Round(2)
	fuelCost := totalDistance.Mul(decimal.NewFromFloat(s.Costs.CostPerKm)).Round(2)
	overhead := decimal.NewFromInt(1).Add(decimal.NewFromFloat(s.Costs.OverheadRate))
	totalCost := fuelCost.Mul(overhead).Round(2)
	hours := decimal.NewFromFloat(minutes).Div(decimal.NewFromInt(60)).Round(2)

	return domain.RouteMetrics{
		TotalDistanceKm:       totalDistance.InexactFloat64(),
		TotalTimeMinutes:      int(math.Round(minutes)),
		TotalTimeHours:        hours.InexactFloat64(),
		FuelCost:              fuelCost.InexactFloat64(),
		TotalCost:             totalCost.InexactFloat64(),
		FuelEfficiencyPercent: s.Costs.FuelEfficiencyPercent,
	}, nil
}
