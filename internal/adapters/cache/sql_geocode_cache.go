package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"
	"strings"
	"time"
)

// sqlDialect holds the statements that differ between the SQL backends.
type sqlDialect struct {
	name string
	// selectQuery returns the lookup statement for n addresses. It filters on
	// updated_at >= the cutoff bound by selectArgs.
	selectQuery func(n int) string
	selectArgs  func(addresses []string, cutoff int64) []any
	// upsert binds (address, lon, lat, updated_at).
	upsert string
}

// SQLGeocodeCache maps normalized addresses to coordinates in a SQL table.
// Entries older than TTL are treated as misses and refreshed by the next put;
// a zero TTL keeps entries forever.
type SQLGeocodeCache struct {
	DB  *sql.DB
	TTL time.Duration

	dialect sqlDialect
	now     func() time.Time
}

// NewPostgresGeocodeCache uses the geocode_cache table created by the embedded migrations.
func NewPostgresGeocodeCache(db *sql.DB, ttl time.Duration) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, TTL: ttl, dialect: postgresDialect, now: time.Now}
}

var postgresDialect = sqlDialect{
	name: "postgres",
	selectQuery: func(int) string {
		return `
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address = ANY($1::text[]) AND updated_at >= $2;
	`
	},
	selectArgs: func(addresses []string, cutoff int64) []any {
		return []any{addresses, cutoff}
	},
	upsert: `
	INSERT INTO geocode_cache (address, lon, lat, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (address) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		updated_at = EXCLUDED.updated_at;
	`,
}

func (s *SQLGeocodeCache) cutoff() int64 {
	if s.TTL <= 0 {
		return 0
	}
	return s.now().Add(-s.TTL).Unix()
}

// Fetch cached, unexpired coordinates for the given addresses.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode."+s.dialect.name+".GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, s.dialect.selectQuery(len(uniq)), s.dialect.selectArgs(uniq, s.cutoff())...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var addr string
		var c domain.Coordinates
		if err := rows.Scan(&addr, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Store address -> coordinate mappings, stamping them with the current time.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode."+s.dialect.name+".PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.dialect.upsert)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	stamp := s.now().Unix()
	for addr, c := range results {
		if strings.TrimSpace(addr) == "" {
			return errors.New("insert geocode cache: empty address key")
		}
		if !c.Valid() {
			return fmt.Errorf("insert geocode cache address=%q: coordinates out of range", addr)
		}

		if _, err := stmt.ExecContext(ctx, addr, c.Lon, c.Lat, stamp); err != nil {
			return fmt.Errorf("insert geocode cache address=%q: %w", addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}
	return nil
}
