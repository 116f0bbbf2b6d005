package services

import (
	"context"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"
	"route-sequencer-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// DistanceMatrix holds precomputed pairwise distances for a fixed stop set and
// serves them as a ports.DistanceResolver. It is read-only after construction.
type DistanceMatrix struct {
	index map[string]int
	dist  [][]float64
}

// PrecomputeDistances resolves every ordered pair of stops up front.
//
// Each origin row is resolved in its own goroutine, at most concurrency at a
// time, so a slow external geocoder is hit in parallel instead of once per
// greedy step. The first failure cancels the remaining rows.
func PrecomputeDistances(
	ctx context.Context,
	resolver ports.DistanceResolver,
	stops []domain.Stop,
	concurrency int,
) (_ *DistanceMatrix, err error) {
	defer obs.Time(ctx, "services.PrecomputeDistances")(&err)

	if concurrency < 1 {
		concurrency = 1
	}

	m := &DistanceMatrix{
		index: make(map[string]int, len(stops)),
		dist:  make([][]float64, len(stops)),
	}
	for i, s := range stops {
		if _, ok := m.index[s.ID]; ok {
			return nil, &domain.ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate stop id %q", s.ID)}
		}
		m.index[s.ID] = i
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range stops {
		g.Go(func() error {
			row := make([]float64, len(stops))
			for j := range stops {
				if i == j {
					continue
				}

				d, err := resolver.Distance(gctx, stops[i], stops[j])
				if err != nil {
					return fmt.Errorf("precompute distances: %q -> %q: %w", stops[i].ID, stops[j].ID, err)
				}
				row[j] = d
			}

			// Rows are disjoint, so goroutines never write the same slot.
			m.dist[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *DistanceMatrix) Distance(_ context.Context, from, to domain.Stop) (float64, error) {
	i, ok := m.index[from.ID]
	if !ok {
		return 0, &domain.ResolutionError{StopID: from.ID, Reason: "stop is not in the precomputed matrix"}
	}

	j, ok := m.index[to.ID]
	if !ok {
		return 0, &domain.ResolutionError{StopID: to.ID, Reason: "stop is not in the precomputed matrix"}
	}

	return m.dist[i][j], nil
}
