package domain

import (
	"math"
	"strings"
)

// Location describes where a stop is. Coordinates win when present; otherwise
// Address is a symbolic descriptor that a geocoder may resolve.
type Location struct {
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Address     string       `json:"address,omitempty"`
}

// Resolved reports whether the location already carries coordinates.
func (l Location) Resolved() bool { return l.Coordinates != nil }

// Represents a single delivery point to visit.
// Weight and Volume are non-negative; an absent weight is zero.
type Stop struct {
	ID       string   `json:"id"`
	Location Location `json:"location"`
	Weight   float64  `json:"weight"`
	Volume   float64  `json:"volume,omitempty"`
}

func (s Stop) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return &ValidationError{Field: "id", Reason: "must be non-empty"}
	}
	if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) || s.Weight < 0 {
		return &ValidationError{Field: "weight", Reason: "stop " + s.ID + " must have a non-negative weight"}
	}
	if math.IsNaN(s.Volume) || math.IsInf(s.Volume, 0) || s.Volume < 0 {
		return &ValidationError{Field: "volume", Reason: "stop " + s.ID + " must have a non-negative volume"}
	}
	if c := s.Location.Coordinates; c != nil && !c.Valid() {
		return &ValidationError{Field: "location", Reason: "stop " + s.ID + " has out of range coordinates"}
	}
	return nil
}

// A Stop annotated with its 1-based position in the visiting order.
type SequencedStop struct {
	Stop
	Position int `json:"position"`
}

// RouteConstraints are optional limits on the cumulative load of a route prefix.
// A nil limit is unbounded.
type RouteConstraints struct {
	MaxWeight *float64 `json:"max_weight,omitempty"`
	MaxVolume *float64 `json:"max_volume,omitempty"`
}

func (c RouteConstraints) Validate() error {
	if c.MaxWeight != nil && (math.IsNaN(*c.MaxWeight) || *c.MaxWeight < 0) {
		return &ValidationError{Field: "max_weight", Reason: "must be non-negative"}
	}
	if c.MaxVolume != nil && (math.IsNaN(*c.MaxVolume) || *c.MaxVolume < 0) {
		return &ValidationError{Field: "max_volume", Reason: "must be non-negative"}
	}
	return nil
}

// Admits reports whether a prefix carrying weight and volume stays within the limits.
func (c RouteConstraints) Admits(weight, volume float64) bool {
	if c.MaxWeight != nil && weight > *c.MaxWeight {
		return false
	}
	if c.MaxVolume != nil && volume > *c.MaxVolume {
		return false
	}
	return true
}

// Number returns a pointer to v, for building optional limits inline.
func Number(v float64) *float64 { return &v }
