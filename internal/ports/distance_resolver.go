package ports

import (
	"context"
	"route-sequencer-service/internal/domain"
)

// Contract for turning two stops into a travel distance in kilometers.
// Implementations return *domain.ResolutionError when a location cannot be resolved;
// they never fabricate a value.
type DistanceResolver interface {
	Distance(ctx context.Context, from, to domain.Stop) (float64, error)
}

// Contract for resolving an address descriptor to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Persistent address -> coordinate cache consulted by geocoders.
// Keys are expected to be normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
