package domain

import (
	"strings"
	"time"
)

// Delivery statuses tracked by the delivery data source.
const (
	DeliveryPending = "pending"
	DeliveryRouted  = "routed"
)

// Represents a pending delivery handled by the system.
// A Delivery has a unique identifier, a destination and a physical load.
// Coordinates are optional; deliveries without them are resolved through
// the configured geocoder using "address, city".
type Delivery struct {
	ID           string
	Address      string
	City         string
	Coordinates  *Coordinates
	WeightKg     float64
	VolumeM3     float64
	DeliveryDate *time.Time
	Status       string
}

// Destination returns the normalized address descriptor used for geocoding.
func (d *Delivery) Destination() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{d.Address, d.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ToStop converts the delivery into a Stop for sequencing.
func (d *Delivery) ToStop() Stop {
	return Stop{
		ID: d.ID,
		Location: Location{
			Coordinates: d.Coordinates,
			Address:     d.Destination(),
		},
		Weight: d.WeightKg,
		Volume: d.VolumeM3,
	}
}
