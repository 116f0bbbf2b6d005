package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"route-sequencer-service/internal/domain"
	"strings"
	"time"
)

type DeliverySeed struct {
	ID           string   `json:"id"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	WeightKg     float64  `json:"weight_kg"`
	VolumeM3     float64  `json:"volume_m3"`
	DeliveryDate string   `json:"delivery_date"`
	Status       string   `json:"status"`
}

type VehicleSeed struct {
	ID          string  `json:"id"`
	Plate       string  `json:"plate"`
	MaxWeightKg float64 `json:"max_weight_kg"`
	MaxVolumeM3 float64 `json:"max_volume_m3"`
}

type Seed struct {
	Deliveries []DeliverySeed `json:"deliveries"`
	Vehicles   []VehicleSeed  `json:"vehicles"`
}

// LoadSeed reads and validates a seed file without touching the database.
func LoadSeed(jsonPath string) (*Seed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", jsonPath, err)
	}
	return parseSeed(bytes)
}

func parseSeed(bytes []byte) (*Seed, error) {
	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data.Deliveries))
	for i := range data.Deliveries {
		d := &data.Deliveries[i]
		d.ID = strings.TrimSpace(d.ID)
		d.Address = strings.TrimSpace(d.Address)
		d.City = strings.TrimSpace(d.City)

		if d.ID == "" {
			return nil, fmt.Errorf("load seed: delivery at index %d: id cannot be empty", i+1)
		}
		if _, ok := seen[d.ID]; ok {
			return nil, fmt.Errorf("load seed: delivery at index %d: duplicate id %q", i+1, d.ID)
		}
		seen[d.ID] = struct{}{}

		if d.Address == "" && (d.Lat == nil || d.Lng == nil) {
			return nil, fmt.Errorf("load seed: delivery %q: address or lat/lng is required", d.ID)
		}
		if (d.Lat == nil) != (d.Lng == nil) {
			return nil, fmt.Errorf("load seed: delivery %q: lat and lng must be set together", d.ID)
		}
		if d.Lat != nil && !(domain.Coordinates{Lat: *d.Lat, Lon: *d.Lng}).Valid() {
			return nil, fmt.Errorf("load seed: delivery %q: coordinates out of range", d.ID)
		}
		if d.WeightKg < 0 || d.VolumeM3 < 0 {
			return nil, fmt.Errorf("load seed: delivery %q: weight and volume must be non-negative", d.ID)
		}
		if d.DeliveryDate != "" {
			if _, err := time.Parse(time.DateOnly, d.DeliveryDate); err != nil {
				return nil, fmt.Errorf("load seed: delivery %q: delivery_date: %w", d.ID, err)
			}
		}
		if d.Status == "" {
			d.Status = domain.DeliveryPending
		}
	}

	for i, v := range data.Vehicles {
		if _, err := domain.NewVehicle(strings.TrimSpace(v.ID), v.MaxWeightKg, v.MaxVolumeM3); err != nil {
			return nil, fmt.Errorf("load seed: vehicle at index %d: %w", i+1, err)
		}
	}

	return &data, nil
}

// Populate the database with delivery and vehicle data from a JSON file.
// Existing rows with the same id are overwritten.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	data, err := LoadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deliveryStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO deliveries (
		id,
		address,
		city,
		lat,
		lng,
		weight_kg,
		volume_m3,
		delivery_date,
		status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')::date, $9)
	ON CONFLICT (id) DO UPDATE
	SET address = EXCLUDED.address,
		city = EXCLUDED.city,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		weight_kg = EXCLUDED.weight_kg,
		volume_m3 = EXCLUDED.volume_m3,
		delivery_date = EXCLUDED.delivery_date,
		status = EXCLUDED.status;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare delivery insert: %w", err)
	}
	defer deliveryStmt.Close()

	for _, d := range data.Deliveries {
		if _, err := deliveryStmt.ExecContext(ctx,
			d.ID, d.Address, d.City, d.Lat, d.Lng, d.WeightKg, d.VolumeM3, d.DeliveryDate, d.Status,
		); err != nil {
			return fmt.Errorf("seed: insert delivery id=%q: %w", d.ID, err)
		}
	}

	vehicleStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO vehicles (id, plate, max_weight_kg, max_volume_m3)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET plate = EXCLUDED.plate,
		max_weight_kg = EXCLUDED.max_weight_kg,
		max_volume_m3 = EXCLUDED.max_volume_m3;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare vehicle insert: %w", err)
	}
	defer vehicleStmt.Close()

	for _, v := range data.Vehicles {
		if _, err := vehicleStmt.ExecContext(ctx,
			strings.TrimSpace(v.ID), v.Plate, v.MaxWeightKg, v.MaxVolumeM3,
		); err != nil {
			return fmt.Errorf("seed: insert vehicle id=%q: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
