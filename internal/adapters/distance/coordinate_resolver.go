package distance

import (
	"context"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/ports"
	"strings"
	"sync"
)

// CoordinateResolver computes great-circle distances from stop coordinates.
// A stop without coordinates is a *domain.ResolutionError; no value is guessed.
type CoordinateResolver struct{}

func (CoordinateResolver) Distance(_ context.Context, from, to domain.Stop) (float64, error) {
	a := from.Location.Coordinates
	if a == nil {
		return 0, &domain.ResolutionError{StopID: from.ID, Reason: "location has no coordinates"}
	}

	b := to.Location.Coordinates
	if b == nil {
		return 0, &domain.ResolutionError{StopID: to.ID, Reason: "location has no coordinates"}
	}

	return domain.HaversineKm(*a, *b), nil
}

// GeocodingResolver uses stop coordinates when present and otherwise resolves
// the stop address through Geocoder before computing the great-circle distance.
//
// Resolved addresses are memoized for the lifetime of the resolver, which is
// safe for concurrent use.
type GeocodingResolver struct {
	geocoder ports.Geocoder

	mu   sync.Mutex
	memo map[string]domain.Coordinates
}

func NewGeocodingResolver(geocoder ports.Geocoder) *GeocodingResolver {
	return &GeocodingResolver{
		geocoder: geocoder,
		memo:     make(map[string]domain.Coordinates),
	}
}

func (r *GeocodingResolver) Distance(ctx context.Context, from, to domain.Stop) (float64, error) {
	a, err := r.locate(ctx, from)
	if err != nil {
		return 0, err
	}

	b, err := r.locate(ctx, to)
	if err != nil {
		return 0, err
	}

	return domain.HaversineKm(a, b), nil
}

func (r *GeocodingResolver) locate(ctx context.Context, s domain.Stop) (domain.Coordinates, error) {
	if c := s.Location.Coordinates; c != nil {
		return *c, nil
	}

	addr := normalize(s.Location.Address)
	if addr == "" {
		return domain.Coordinates{}, &domain.ResolutionError{StopID: s.ID, Reason: "location has neither coordinates nor address"}
	}
	if r.geocoder == nil {
		return domain.Coordinates{}, &domain.ResolutionError{StopID: s.ID, Reason: "no geocoder configured for address " + addr}
	}

	r.mu.Lock()
	c, ok := r.memo[addr]
	r.mu.Unlock()
	if ok {
		return c, nil
	}

	c, err := r.geocoder.Geocode(ctx, addr)
	if err != nil {
		return domain.Coordinates{}, &domain.ResolutionError{StopID: s.ID, Reason: "geocode " + addr, Err: err}
	}

	r.mu.Lock()
	r.memo[addr] = c
	r.mu.Unlock()

	return c, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
