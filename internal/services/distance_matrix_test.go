package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"route-sequencer-service/internal/adapters/distance"
	"route-sequencer-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestPrecomputeDistances(t *testing.T) {
	stops := []domain.Stop{
		at("depot", -25.4284, -49.2733, 0),
		at("1", -25.4411, -49.2769, 3),
		at("2", -25.4195, -49.2646, 7),
		at("3", -25.4500, -49.2300, 2),
	}

	var calls atomic.Int64
	counting := resolverFunc(func(ctx context.Context, from, to domain.Stop) (float64, error) {
		calls.Add(1)
		return distance.CoordinateResolver{}.Distance(ctx, from, to)
	})

	m, err := PrecomputeDistances(context.Background(), counting, stops, 3)
	require.NoError(t, err)
	require.EqualValues(t, len(stops)*(len(stops)-1), calls.Load())

	for _, a := range stops {
		for _, b := range stops {
			got, err := m.Distance(context.Background(), a, b)
			require.NoError(t, err)
			want, _ := distance.CoordinateResolver{}.Distance(context.Background(), a, b)
			require.Equal(t, want, got)
		}
	}

	_, err = m.Distance(context.Background(), stops[0], at("other", 0, 0, 0))
	var re *domain.ResolutionError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "other", re.StopID)

	// Sequencing over the matrix matches sequencing over the resolver it was built from.
	direct, err := NewRouteSequencer(distance.CoordinateResolver{}, domain.DefaultCostModel(), true)
	require.NoError(t, err)
	cached, err := NewRouteSequencer(m, domain.DefaultCostModel(), true)
	require.NoError(t, err)

	want, err := direct.Plan(context.Background(), stops, domain.RouteConstraints{})
	require.NoError(t, err)
	got, err := cached.Plan(context.Background(), stops, domain.RouteConstraints{})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestPrecomputeDistancesFailures(t *testing.T) {
	boom := errors.New("geocoder down")
	failing := resolverFunc(func(context.Context, domain.Stop, domain.Stop) (float64, error) {
		return 0, boom
	})

	_, err := PrecomputeDistances(context.Background(), failing, []domain.Stop{stop("a", 0), stop("b", 0)}, 0)
	require.ErrorIs(t, err, boom)

	_, err = PrecomputeDistances(context.Background(), failing, []domain.Stop{stop("a", 0), stop("a", 0)}, 2)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}
