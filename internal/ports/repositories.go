package ports

import (
	"context"
	"route-sequencer-service/internal/domain"

	"github.com/google/uuid"
)

// Port: a boundary for retrieving Delivery records from a data source.
type DeliveryRepository interface {
	// List deliveries with the given status; an empty status lists all.
	ListDeliveries(ctx context.Context, status string) ([]*domain.Delivery, error)
	// Fetch the deliveries with the given ids. Unknown ids are simply absent from the result.
	GetDeliveries(ctx context.Context, ids []string) ([]*domain.Delivery, error)
}

// Port: lookup of vehicles and their declared capacity.
type VehicleRepository interface {
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
}

// Port: persistence sink for computed routes.
type RouteRepository interface {
	SaveRoute(ctx context.Context, route *domain.Route) error
	GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error)
}
