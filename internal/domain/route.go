package domain

import (
	"time"

	"github.com/google/uuid"
)

// Route statuses.
const (
	RoutePlanned = "planned"
	RoutePartial = "partial"
)

// Represents the planned delivery route for a single vehicle.
// A Route is the output of sequencing plus metrics, ready to be persisted.
// Stops[0] is the depot; Excluded lists deliveries the capacity could not hold.
type Route struct {
	ID        uuid.UUID       `json:"id"`
	VehicleID string          `json:"vehicle_id"`
	DriverID  string          `json:"driver_id"`
	RouteDate time.Time       `json:"route_date"`
	Status    string          `json:"status"`
	Stops     []SequencedStop `json:"stops"`
	Excluded  []Stop          `json:"excluded"`
	Metrics   RouteMetrics    `json:"metrics"`
	CreatedAt time.Time       `json:"created_at"`
}
