package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the RouteRepository port.
// A route, its stops and its exclusions are written in a single transaction.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

// SaveRoute persists route and marks its sequenced deliveries as routed.
// The delivery rows are locked first, so of two routes racing for the same
// delivery the second fails with a *domain.ValidationError and is rolled back.
func (p *PostgresRouteRepository) SaveRoute(ctx context.Context, route *domain.Route) (err error) {
	defer obs.Time(ctx, "repo.SaveRoute")(&err)

	if p.DB == nil {
		return errors.New("postgres route repository: DB is nil")
	}
	if route == nil {
		return errors.New("save route: route is nil")
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	claimed, err := lockDeliveries(ctx, tx, route.Stops)
	if err != nil {
		return fmt.Errorf("save route: %w", err)
	}

	m := route.Metrics
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO routes (
		id,
		vehicle_id,
		driver_id,
		route_date,
		status,
		total_distance_km,
		total_time_minutes,
		total_time_hours,
		fuel_cost,
		total_cost,
		fuel_efficiency_percent,
		created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`,
		route.ID, route.VehicleID, route.DriverID, route.RouteDate, route.Status,
		m.TotalDistanceKm, m.TotalTimeMinutes, m.TotalTimeHours,
		m.FuelCost, m.TotalCost, m.FuelEfficiencyPercent, route.CreatedAt,
	); err != nil {
		return fmt.Errorf("save route: insert route %s: %w", route.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_stops (
		route_id,
		stop_id,
		position,
		excluded,
		lat,
		lng,
		address,
		weight_kg,
		volume_m3
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`)
	if err != nil {
		return fmt.Errorf("save route: prepare stop insert: %w", err)
	}
	defer stmt.Close()

	insertStop := func(s domain.Stop, position sql.NullInt64, excluded bool) error {
		var lat, lng sql.NullFloat64
		if c := s.Location.Coordinates; c != nil {
			lat = sql.NullFloat64{Float64: c.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: c.Lon, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			route.ID, s.ID, position, excluded, lat, lng, s.Location.Address, s.Weight, s.Volume,
		)
		if err != nil {
			return fmt.Errorf("save route: insert stop %q: %w", s.ID, err)
		}
		return nil
	}

	for _, s := range route.Stops {
		if err := insertStop(s.Stop, sql.NullInt64{Int64: int64(s.Position), Valid: true}, false); err != nil {
			return err
		}
	}
	for _, s := range route.Excluded {
		if err := insertStop(s, sql.NullInt64{}, true); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `
	UPDATE deliveries
	SET status = $1
	WHERE id = ANY($2::text[]) AND status = $3;
	`, domain.DeliveryRouted, claimed, domain.DeliveryPending)
	if err != nil {
		return fmt.Errorf("save route: mark deliveries routed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != int64(len(claimed)) {
		return fmt.Errorf("save route: marked %d of %d deliveries routed", n, len(claimed))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save route: commit tx: %w", err)
	}
	return nil
}

// GetRoute returns domain.ErrNotFound when no route has the given id.
func (p *PostgresRouteRepository) GetRoute(ctx context.Context, id uuid.UUID) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "repo.GetRoute")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	route := domain.Route{
		Stops:    []domain.SequencedStop{},
		Excluded: []domain.Stop{},
	}
	m := &route.Metrics
	err = p.DB.QueryRowContext(ctx, `
	SELECT
		id,
		vehicle_id,
		driver_id,
		route_date,
		status,
		total_distance_km,
		total_time_minutes,
		total_time_hours,
		fuel_cost,
		total_cost,
		fuel_efficiency_percent,
		created_at
	FROM routes
	WHERE id = $1;
	`, id).Scan(
		&route.ID, &route.VehicleID, &route.DriverID, &route.RouteDate, &route.Status,
		&m.TotalDistanceKm, &m.TotalTimeMinutes, &m.TotalTimeHours,
		&m.FuelCost, &m.TotalCost, &m.FuelEfficiencyPercent, &route.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}

	rows, err := p.DB.QueryContext(ctx, `
	SELECT stop_id, position, excluded, lat, lng, address, weight_kg, volume_m3
	FROM route_stops
	WHERE route_id = $1
	ORDER BY excluded, position NULLS LAST, stop_id;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get route %s: query stops: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s        domain.Stop
			position sql.NullInt64
			excluded bool
			lat, lng sql.NullFloat64
		)
		if err := rows.Scan(
			&s.ID, &position, &excluded, &lat, &lng, &s.Location.Address, &s.Weight, &s.Volume,
		); err != nil {
			return nil, fmt.Errorf("get route %s: scan stop: %w", id, err)
		}
		if lat.Valid && lng.Valid {
			s.Location.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lon: lng.Float64}
		}

		if excluded {
			route.Excluded = append(route.Excluded, s)
			continue
		}
		route.Stops = append(route.Stops, domain.SequencedStop{Stop: s, Position: int(position.Int64)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get route %s: stop iteration: %w", id, err)
	}

	return &route, nil
}

// lockDeliveries locks the delivery rows behind stops and returns the ids that
// may be claimed. The depot has no delivery row and is skipped.
func lockDeliveries(ctx context.Context, tx *sql.Tx, stops []domain.SequencedStop) ([]string, error) {
	ids := make([]string, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.ID)
	}

	rows, err := tx.QueryContext(ctx, `
	SELECT id, status
	FROM deliveries
	WHERE id = ANY($1::text[])
	ORDER BY id
	FOR UPDATE;
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("lock deliveries: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]string, len(ids))
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("lock deliveries: scan row: %w", err)
		}
		statuses[id] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock deliveries: row iteration: %w", err)
	}

	return claimDeliveries(stops, statuses)
}
