package distance

import (
	"context"
	"route-sequencer-service/internal/domain"
)

type FixedPair struct {
	From, To string
	Km       float64
}

// FixedResolver serves distances from a table keyed by stop id.
// When Symmetric is set a missing "a|b" entry falls back to "b|a".
type FixedResolver struct {
	m         map[string]float64
	Symmetric bool
}

func NewFixedResolver(pairs []FixedPair, symmetric bool) *FixedResolver {
	m := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Km
	}
	return &FixedResolver{m: m, Symmetric: symmetric}
}

func (r *FixedResolver) Distance(_ context.Context, from, to domain.Stop) (float64, error) {
	if from.ID == to.ID {
		return 0, nil
	}

	if km, ok := r.m[from.ID+"|"+to.ID]; ok {
		return km, nil
	}
	if r.Symmetric {
		if km, ok := r.m[to.ID+"|"+from.ID]; ok {
			return km, nil
		}
	}

	return 0, &domain.ResolutionError{StopID: to.ID, Reason: "no distance from " + from.ID}
}
