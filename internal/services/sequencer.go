package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"
	"route-sequencer-service/internal/ports"
	"slices"
	"strings"
)

// RouteSequencer orders delivery stops with a greedy nearest-neighbor heuristic
// and computes distance/time/cost metrics for the resulting sequence.
//
// It holds no per-call state and is safe for concurrent use. All distance
// lookups go through Resolver, so tests can inject a deterministic table.
type RouteSequencer struct {
	Resolver       ports.DistanceResolver
	Costs          domain.CostModel
	ReturnToOrigin bool
}

func NewRouteSequencer(resolver ports.DistanceResolver, costs domain.CostModel, returnToOrigin bool) (*RouteSequencer, error) {
	if resolver == nil {
		return nil, errors.New("new route sequencer: resolver must be non-nil")
	}
	if err := costs.Validate(); err != nil {
		return nil, fmt.Errorf("new route sequencer: %w", err)
	}

	return &RouteSequencer{Resolver: resolver, Costs: costs, ReturnToOrigin: returnToOrigin}, nil
}

// Plan is a sequencing result together with the metrics of its sequenced stops.
type Plan struct {
	Sequence *domain.SequenceResult `json:"sequence"`
	Metrics  domain.RouteMetrics    `json:"metrics"`
}

// Sequence a set of stops using a greedy nearest-neighbor algorithm.
//
// stops[0] is the starting point. At each step the closest remaining stop that
// keeps the visited prefix within constraints is appended; ties go to the stop
// that appears first in the input. When no remaining stop fits, sequencing stops
// and the leftovers are reported as Excluded with a partial status. A start stop
// that alone breaks a limit yields an infeasible result.
func (s *RouteSequencer) Sequence(
	ctx context.Context,
	stops []domain.Stop,
	constraints domain.RouteConstraints,
) (_ *domain.SequenceResult, err error) {
	defer obs.Time(ctx, "sequencer.Sequence")(&err)

	if err := validateStops(stops, constraints); err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}

	if len(stops) == 0 {
		return &domain.SequenceResult{
			Status:   domain.SequenceComplete,
			Stops:    []domain.SequencedStop{},
			Excluded: []domain.Stop{},
		}, nil
	}

	start := stops[0]
	if !constraints.Admits(start.Weight, start.Volume) {
		excluded := make([]domain.Stop, len(stops))
		copy(excluded, stops)
		return &domain.SequenceResult{
			Status:   domain.SequenceInfeasible,
			Stops:    []domain.SequencedStop{},
			Excluded: excluded,
			Reason:   fmt.Sprintf("start stop %q alone exceeds %s", start.ID, describeLimits(constraints)),
		}, nil
	}

	remaining := make([]domain.Stop, len(stops)-1)
	copy(remaining, stops[1:])

	visited := make([]domain.SequencedStop, 0, len(stops))
	visited = append(visited, domain.SequencedStop{Stop: start, Position: 1})

	current := start
	load := start.Weight
	volume := start.Volume

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best := -1
		bestDistance := math.Inf(1)

		// Select next stop by minimum distance (greedy step). Iterating in input
		// order with a strict comparison keeps the lowest index on ties.
		for i, candidate := range remaining {
			if !constraints.Admits(load+candidate.Weight, volume+candidate.Volume) {
				continue
			}

			d, err := s.Distance(ctx, current, candidate)
			if err != nil {
				return nil, fmt.Errorf("sequence: %w", err)
			}

			if best == -1 || d < bestDistance {
				best = i
				bestDistance = d
			}
		}

		// The prefix load only grows, so nothing left can fit in a later pass.
		if best == -1 {
			break
		}

		next := remaining[best]
		visited = append(visited, domain.SequencedStop{Stop: next, Position: len(visited) + 1})
		load += next.Weight
		volume += next.Volume
		current = next

		remaining = slices.Delete(remaining, best, best+1)
	}

	if len(remaining) > 0 {
		return &domain.SequenceResult{
			Status:   domain.SequencePartial,
			Stops:    visited,
			Excluded: remaining,
			Reason:   fmt.Sprintf("%d stop(s) do not fit within %s", len(remaining), describeLimits(constraints)),
		}, nil
	}

	return &domain.SequenceResult{
		Status:   domain.SequenceComplete,
		Stops:    visited,
		Excluded: []domain.Stop{},
	}, nil
}

// Distance returns the resolver distance between a and b in kilometers.
// Negative or non-finite values are rejected as resolution failures.
func (s *RouteSequencer) Distance(ctx context.Context, a, b domain.Stop) (float64, error) {
	if s.Resolver == nil {
		return 0, errors.New("distance: resolver must be non-nil")
	}

	d, err := s.Resolver.Distance(ctx, a, b)
	if err != nil {
		return 0, fmt.Errorf("distance %q -> %q: %w", a.ID, b.ID, err)
	}

	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, &domain.ResolutionError{
			StopID: b.ID,
			Reason: fmt.Sprintf("resolver returned invalid distance %v from %q", d, a.ID),
		}
	}

	return d, nil
}

// Plan sequences stops and computes the metrics of the sequenced part.
func (s *RouteSequencer) Plan(
	ctx context.Context,
	stops []domain.Stop,
	constraints domain.RouteConstraints,
) (*Plan, error) {
	result, err := s.Sequence(ctx, stops, constraints)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	metrics, err := s.ComputeMetrics(ctx, result.Stops)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	return &Plan{Sequence: result, Metrics: metrics}, nil
}

func validateStops(stops []domain.Stop, constraints domain.RouteConstraints) error {
	if err := constraints.Validate(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(stops))
	for _, st := range stops {
		if err := st.Validate(); err != nil {
			return err
		}
		if _, ok := seen[st.ID]; ok {
			return &domain.ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate stop id %q", st.ID)}
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}

func describeLimits(c domain.RouteConstraints) string {
	parts := make([]string, 0, 2)
	if c.MaxWeight != nil {
		parts = append(parts, fmt.Sprintf("max weight %g", *c.MaxWeight))
	}
	if c.MaxVolume != nil {
		parts = append(parts, fmt.Sprintf("max volume %g", *c.MaxVolume))
	}
	if len(parts) == 0 {
		return "no limits"
	}
	return strings.Join(parts, " and ")
}
