package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHaversineKm(t *testing.T) {
	origin := Coordinates{Lat: 0, Lon: 0}

	// One degree of longitude on the equator.
	require.InDelta(t, 111.195, HaversineKm(origin, Coordinates{Lat: 0, Lon: 1}), 0.001)
	require.InDelta(t, 1111.95, HaversineKm(origin, Coordinates{Lat: 0, Lon: 10}), 0.01)
	require.Zero(t, HaversineKm(origin, origin))

	a := Coordinates{Lat: -23.5505, Lon: -46.6333}
	b := Coordinates{Lat: -22.9068, Lon: -43.1729}
	require.InDelta(t, HaversineKm(a, b), HaversineKm(b, a), 1e-9, "distance must be symmetric")
	require.InDelta(t, 360, HaversineKm(a, b), 5)
}

func TestStopValidate(t *testing.T) {
	cases := []struct {
		name  string
		stop  Stop
		field string
	}{
		{name: "empty id", stop: Stop{ID: " "}, field: "id"},
		{name: "negative weight", stop: Stop{ID: "1", Weight: -1}, field: "weight"},
		{name: "nan weight", stop: Stop{ID: "1", Weight: math.NaN()}, field: "weight"},
		{name: "negative volume", stop: Stop{ID: "1", Volume: -0.5}, field: "volume"},
		{
			name:  "latitude out of range",
			stop:  Stop{ID: "1", Location: Location{Coordinates: &Coordinates{Lat: 91}}},
			field: "location",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ve *ValidationError
			require.True(t, errors.As(tc.stop.Validate(), &ve))
			require.Equal(t, tc.field, ve.Field)
		})
	}

	require.NoError(t, Stop{ID: "ok", Location: Location{Address: "Rua A, 10"}}.Validate())
}

func TestRouteConstraints(t *testing.T) {
	c := RouteConstraints{MaxWeight: Number(10), MaxVolume: Number(2)}
	require.NoError(t, c.Validate())
	require.True(t, c.Admits(10, 2))
	require.False(t, c.Admits(10.5, 1))
	require.False(t, c.Admits(1, 2.1))

	require.Error(t, RouteConstraints{MaxWeight: Number(-1)}.Validate())
}

func TestSequenceResultErr(t *testing.T) {
	complete := &SequenceResult{Status: SequenceComplete}
	require.NoError(t, complete.Err())

	partial := &SequenceResult{
		Status:   SequencePartial,
		Excluded: []Stop{{ID: "7"}, {ID: "9"}},
		Reason:   "max weight 10 reached",
	}

	var ce *CapacityExceededError
	require.ErrorAs(t, partial.Err(), &ce)
	require.Equal(t, []string{"7", "9"}, ce.Excluded)
	require.Contains(t, ce.Error(), "7, 9")
}

func TestDeliveryToStop(t *testing.T) {
	d := &Delivery{ID: "42", Address: " Rua das Flores, 100 ", City: "Curitiba", WeightKg: 12.5, VolumeM3: 0.3}

	s := d.ToStop()
	require.Equal(t, "42", s.ID)
	require.Equal(t, "Rua das Flores, 100, Curitiba", s.Location.Address)
	require.False(t, s.Location.Resolved())
	require.Equal(t, 12.5, s.Weight)
	require.Equal(t, 0.3, s.Volume)
}
