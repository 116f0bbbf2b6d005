package services

import (
	"context"
	"math"
	"testing"

	"route-sequencer-service/internal/adapters/distance"
	"route-sequencer-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	costs := domain.DefaultCostModel()
	s, err := NewRouteSequencer(distance.NewFixedResolver([]distance.FixedPair{{From: "A", To: "B", Km: 10}}, true), costs, false)
	require.NoError(t, err)

	seg, err := s.Segment(context.Background(), stop("A", 0), stop("B", 0))
	require.NoError(t, err)
	require.Equal(t, domain.Segment{DistanceKm: 10, TimeMinutes: 15, Cost: 8}, seg)

	s.Costs.TrafficAllowanceMinutes = 2
	seg, err = s.Segment(context.Background(), stop("B", 0), stop("A", 0))
	require.NoError(t, err)
	require.InDelta(t, 17, seg.TimeMinutes, 1e-9)

	_, err = s.Segment(context.Background(), stop("A", 0), stop("C", 0))
	var re *domain.ResolutionError
	require.ErrorAs(t, err, &re)
}

func TestComputeMetrics(t *testing.T) {
	pairs := []distance.FixedPair{
		{From: "O", To: "A", Km: 10},
		{From: "A", To: "B", Km: 20},
		{From: "B", To: "O", Km: 15},
	}
	sequence := []domain.SequencedStop{
		{Stop: stop("O", 0), Position: 1},
		{Stop: stop("A", 0), Position: 2},
		{Stop: stop("B", 0), Position: 3},
	}

	t.Run("open route", func(t *testing.T) {
		s, err := NewRouteSequencer(distance.NewFixedResolver(pairs, true), domain.DefaultCostModel(), false)
		require.NoError(t, err)

		m, err := s.ComputeMetrics(context.Background(), sequence)
		require.NoError(t, err)
		require.InDelta(t, 30, m.TotalDistanceKm, 1e-9)
		require.InDelta(t, 24, m.FuelCost, 1e-9)
		require.InDelta(t, 28.8, m.TotalCost, 1e-9)
		require.Equal(t, 45, m.TotalTimeMinutes)
		require.InDelta(t, 0.75, m.TotalTimeHours, 1e-9)
		require.Equal(t, 85.0, m.FuelEfficiencyPercent)
	})

	t.Run("return leg", func(t *testing.T) {
		s, err := NewRouteSequencer(distance.NewFixedResolver(pairs, true), domain.DefaultCostModel(), true)
		require.NoError(t, err)

		m, err := s.ComputeMetrics(context.Background(), sequence)
		require.NoError(t, err)
		require.InDelta(t, 45, m.TotalDistanceKm, 1e-9)
		require.InDelta(t, 36, m.FuelCost, 1e-9)
		require.InDelta(t, 43.2, m.TotalCost, 1e-9)
		require.Equal(t, 68, m.TotalTimeMinutes)
		require.InDelta(t, 1.13, m.TotalTimeHours, 1e-9)
	})

	t.Run("traffic allowance per leg", func(t *testing.T) {
		costs := domain.DefaultCostModel()
		costs.TrafficAllowanceMinutes = 5
		s, err := NewRouteSequencer(distance.NewFixedResolver(pairs, true), costs, false)
		require.NoError(t, err)

		m, err := s.ComputeMetrics(context.Background(), sequence)
		require.NoError(t, err)
		require.Equal(t, 55, m.TotalTimeMinutes)
	})
}

func TestComputeMetricsIsNonNegative(t *testing.T) {
	s, err := NewRouteSequencer(distance.CoordinateResolver{}, domain.DefaultCostModel(), true)
	require.NoError(t, err)

	routes := [][]domain.SequencedStop{
		nil,
		{{Stop: at("a", 0, 0, 0), Position: 1}},
		{{Stop: at("a", 0, 0, 0), Position: 1}, {Stop: at("b", 0, 0, 0), Position: 2}},
		{{Stop: at("a", -23.55, -46.63, 0), Position: 1}, {Stop: at("b", -22.90, -43.17, 0), Position: 2}},
	}

	for _, r := range routes {
		m, err := s.ComputeMetrics(context.Background(), r)
		require.NoError(t, err)
		require.GreaterOrEqual(t, m.TotalDistanceKm, 0.0)
		require.GreaterOrEqual(t, m.FuelCost, 0.0)
		require.GreaterOrEqual(t, m.TotalCost, m.FuelCost)
		require.GreaterOrEqual(t, m.TotalTimeMinutes, 0)
	}
}

func TestComputeMetricsRejectsOverflow(t *testing.T) {
	huge := resolverFunc(func(context.Context, domain.Stop, domain.Stop) (float64, error) {
		return math.MaxFloat64, nil
	})
	s, err := NewRouteSequencer(huge, domain.DefaultCostModel(), true)
	require.NoError(t, err)

	_, err = s.ComputeMetrics(context.Background(), []domain.SequencedStop{
		{Stop: stop("O", 0), Position: 1},
		{Stop: stop("A", 0), Position: 2},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}
