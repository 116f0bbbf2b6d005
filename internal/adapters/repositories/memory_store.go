package repositories

import (
	"context"
	"fmt"
	"route-sequencer-service/internal/domain"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps deliveries, vehicles and routes in process memory.
// It implements every repository port and backs the server when no
// DATABASE_URL is configured, as well as the handler and service tests.
type MemoryStore struct {
	mu         sync.RWMutex
	deliveries map[string]domain.Delivery
	vehicles   map[string]domain.Vehicle
	routes     map[uuid.UUID]domain.Route
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deliveries: make(map[string]domain.Delivery),
		vehicles:   make(map[string]domain.Vehicle),
		routes:     make(map[uuid.UUID]domain.Route),
	}
}

// NewMemoryStoreFromSeed loads a seed file into a fresh store.
func NewMemoryStoreFromSeed(jsonPath string) (*MemoryStore, error) {
	seed, err := LoadSeed(jsonPath)
	if err != nil {
		return nil, err
	}

	s := NewMemoryStore()
	for _, d := range seed.Deliveries {
		delivery := domain.Delivery{
			ID:       d.ID,
			Address:  d.Address,
			City:     d.City,
			WeightKg: d.WeightKg,
			VolumeM3: d.VolumeM3,
			Status:   d.Status,
		}
		if d.Lat != nil && d.Lng != nil {
			delivery.Coordinates = &domain.Coordinates{Lat: *d.Lat, Lon: *d.Lng}
		}
		if d.DeliveryDate != "" {
			// Already validated by LoadSeed.
			t, _ := time.Parse(time.DateOnly, d.DeliveryDate)
			delivery.DeliveryDate = &t
		}
		s.PutDelivery(delivery)
	}
	for _, v := range seed.Vehicles {
		s.PutVehicle(domain.Vehicle{ID: v.ID, Plate: v.Plate, MaxWeightKg: v.MaxWeightKg, MaxVolumeM3: v.MaxVolumeM3})
	}
	return s, nil
}

func (s *MemoryStore) PutDelivery(d domain.Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Status == "" {
		d.Status = domain.DeliveryPending
	}
	s.deliveries[d.ID] = d
}

func (s *MemoryStore) PutVehicle(v domain.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
}

func (s *MemoryStore) ListDeliveries(_ context.Context, status string) ([]*domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Delivery, 0, len(s.deliveries))
	for _, d := range s.deliveries {
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetDeliveries(_ context.Context, ids []string) ([]*domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Delivery, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.deliveries[id]; ok {
			out = append(out, &d)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetVehicle(_ context.Context, id string) (*domain.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("get vehicle %q: %w", id, domain.ErrNotFound)
	}
	return &v, nil
}

// SaveRoute stores route and marks its deliveries as routed. It fails with a
// *domain.ValidationError, storing nothing, when a sequenced delivery is no
// longer pending.
func (s *MemoryStore) SaveRoute(_ context.Context, route *domain.Route) error {
	if route == nil {
		return fmt.Errorf("save route: route is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.routes[route.ID]; ok {
		return fmt.Errorf("save route: route %s already exists", route.ID)
	}

	statuses := make(map[string]string, len(route.Stops))
	for _, st := range route.Stops {
		if d, ok := s.deliveries[st.ID]; ok {
			statuses[st.ID] = d.Status
		}
	}
	claimed, err := claimDeliveries(route.Stops, statuses)
	if err != nil {
		return fmt.Errorf("save route: %w", err)
	}

	s.routes[route.ID] = cloneRoute(*route)
	for _, id := range claimed {
		d := s.deliveries[id]
		d.Status = domain.DeliveryRouted
		s.deliveries[id] = d
	}
	return nil
}

func (s *MemoryStore) GetRoute(_ context.Context, id uuid.UUID) (*domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.routes[id]
	if !ok {
		return nil, fmt.Errorf("get route %s: %w", id, domain.ErrNotFound)
	}
	r = cloneRoute(r)
	return &r, nil
}

// cloneRoute copies the stop slices so stored routes never share backing
// arrays with callers.
func cloneRoute(r domain.Route) domain.Route {
	r.Stops = slices.Clone(r.Stops)
	r.Excluded = slices.Clone(r.Excluded)
	return r
}
