package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.DeliveryRepository = (*MemoryStore)(nil)
	_ ports.VehicleRepository  = (*MemoryStore)(nil)
	_ ports.RouteRepository    = (*MemoryStore)(nil)

	_ ports.DeliveryRepository = (*PostgresDeliveryRepository)(nil)
	_ ports.VehicleRepository  = (*PostgresVehicleRepository)(nil)
	_ ports.RouteRepository    = (*PostgresRouteRepository)(nil)
)

func TestMemoryStoreSaveRouteMarksDeliveriesRouted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.PutDelivery(domain.Delivery{ID: "1", Address: "Rua A"})
	s.PutDelivery(domain.Delivery{ID: "2", Address: "Rua B"})

	pending, err := s.ListDeliveries(ctx, domain.DeliveryPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	route := &domain.Route{
		ID:       uuid.New(),
		Stops:    []domain.SequencedStop{{Stop: domain.Stop{ID: "depot"}, Position: 1}, {Stop: domain.Stop{ID: "1"}, Position: 2}},
		Excluded: []domain.Stop{{ID: "2"}},
	}
	require.NoError(t, s.SaveRoute(ctx, route))
	require.Error(t, s.SaveRoute(ctx, route), "route ids are unique")

	pending, err = s.ListDeliveries(ctx, domain.DeliveryPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "2", pending[0].ID)

	got, err := s.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	require.Equal(t, route.Stops, got.Stops)

	_, err = s.GetRoute(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.GetVehicle(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewMemoryStoreFromSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"deliveries": [{"id": "1", "lat": -25.4, "lng": -49.2, "weight_kg": 4, "delivery_date": "2026-05-04"}],
		"vehicles": [{"id": "van-1", "max_weight_kg": 500}]
	}`), 0o600))

	s, err := NewMemoryStoreFromSeed(path)
	require.NoError(t, err)

	ds, err := s.GetDeliveries(context.Background(), []string{"1", "nope"})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.Equal(t, &domain.Coordinates{Lat: -25.4, Lon: -49.2}, ds[0].Coordinates)
	require.Equal(t, domain.DeliveryPending, ds[0].Status)
	require.NotNil(t, ds[0].DeliveryDate)

	v, err := s.GetVehicle(context.Background(), "van-1")
	require.NoError(t, err)
	require.Equal(t, 500.0, v.MaxWeightKg)
}

func TestMemoryStoreRejectsDeliveryInTwoRoutes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.PutDelivery(domain.Delivery{ID: "d1", Address: "Rua A"})
	s.PutDelivery(domain.Delivery{ID: "d2", Address: "Rua B"})

	depot := domain.SequencedStop{Stop: domain.Stop{ID: "depot"}, Position: 1}
	first := &domain.Route{
		ID:    uuid.New(),
		Stops: []domain.SequencedStop{depot, {Stop: domain.Stop{ID: "d1"}, Position: 2}},
	}
	second := &domain.Route{
		ID: uuid.New(),
		Stops: []domain.SequencedStop{
			depot,
			{Stop: domain.Stop{ID: "d2"}, Position: 2},
			{Stop: domain.Stop{ID: "d1"}, Position: 3},
		},
	}

	require.NoError(t, s.SaveRoute(ctx, first))

	err := s.SaveRoute(ctx, second)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Reason, "d1")

	// The rejected route left no trace: not stored, d2 still pending.
	_, err = s.GetRoute(ctx, second.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := s.ListDeliveries(ctx, domain.DeliveryPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "d2", pending[0].ID)
}

func TestMemoryStoreRoutesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	route := &domain.Route{
		ID:       uuid.New(),
		Stops:    []domain.SequencedStop{{Stop: domain.Stop{ID: "depot"}, Position: 1}},
		Excluded: []domain.Stop{{ID: "x"}},
	}
	require.NoError(t, s.SaveRoute(ctx, route))

	route.Stops[0].ID = "changed by caller"
	route.Excluded[0].ID = "changed by caller"

	got, err := s.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	require.Equal(t, "depot", got.Stops[0].ID)
	require.Equal(t, "x", got.Excluded[0].ID)

	got.Stops[0].ID = "changed again"
	again, err := s.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	require.Equal(t, "depot", again.Stops[0].ID)
}
