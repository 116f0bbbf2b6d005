package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"
)

// Postgres-backed implementation of the DeliveryRepository port.
type PostgresDeliveryRepository struct{ DB *sql.DB }

func NewPostgresDeliveryRepository(db *sql.DB) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{DB: db}
}

const deliveryColumns = `
	id,
	address,
	city,
	lat,
	lng,
	weight_kg,
	volume_m3,
	delivery_date,
	status
`

// Return deliveries with the given status, or all deliveries when status is empty.
func (p *PostgresDeliveryRepository) ListDeliveries(
	ctx context.Context,
	status string,
) (_ []*domain.Delivery, err error) {
	defer obs.Time(ctx, "repo.ListDeliveries")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres delivery repository: DB is nil")
	}

	query := `SELECT ` + deliveryColumns + `
	FROM deliveries
	WHERE ($1 = '' OR status = $1)
	ORDER BY id;
	`
	rows, err := p.DB.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	deliveries, err := scanDeliveries(rows)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return deliveries, nil
}

// Return the deliveries matching ids. Unknown ids are silently absent from the result.
func (p *PostgresDeliveryRepository) GetDeliveries(
	ctx context.Context,
	ids []string,
) (_ []*domain.Delivery, err error) {
	defer obs.Time(ctx, "repo.GetDeliveries")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres delivery repository: DB is nil")
	}
	if len(ids) == 0 {
		return []*domain.Delivery{}, nil
	}

	query := `SELECT ` + deliveryColumns + `
	FROM deliveries
	WHERE id = ANY($1::text[]);
	`
	rows, err := p.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	deliveries, err := scanDeliveries(rows)
	if err != nil {
		return nil, fmt.Errorf("get deliveries: %w", err)
	}
	return deliveries, nil
}

func scanDeliveries(rows *sql.Rows) ([]*domain.Delivery, error) {
	deliveries := make([]*domain.Delivery, 0, 64)
	for rows.Next() {
		var (
			d        domain.Delivery
			lat, lng sql.NullFloat64
			date     sql.NullTime
		)
		if err := rows.Scan(
			&d.ID, &d.Address, &d.City, &lat, &lng,
			&d.WeightKg, &d.VolumeM3, &date, &d.Status,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		if lat.Valid && lng.Valid {
			d.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lon: lng.Float64}
		}
		if date.Valid {
			t := date.Time
			d.DeliveryDate = &t
		}
		deliveries = append(deliveries, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return deliveries, nil
}
