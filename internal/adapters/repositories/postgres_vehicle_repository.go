package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-sequencer-service/internal/domain"
)

type PostgresVehicleRepository struct{ DB *sql.DB }

func NewPostgresVehicleRepository(db *sql.DB) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{DB: db}
}

// GetVehicle returns domain.ErrNotFound when no vehicle has the given id.
func (p *PostgresVehicleRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	if p.DB == nil {
		return nil, errors.New("postgres vehicle repository: DB is nil")
	}

	var v domain.Vehicle
	err := p.DB.QueryRowContext(ctx, `
	SELECT id, plate, max_weight_kg, max_volume_m3
	FROM vehicles
	WHERE id = $1;
	`, id).Scan(&v.ID, &v.Plate, &v.MaxWeightKg, &v.MaxVolumeM3)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get vehicle %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle %q: %w", id, err)
	}

	return &v, nil
}
