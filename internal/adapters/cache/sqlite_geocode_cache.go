package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite does not bind slices, so the IN list gets one placeholder per address.
// Only the placeholder structure is interpolated; all values stay parameterized.
var sqliteDialect = sqlDialect{
	name: "sqlite",
	selectQuery: func(n int) string {
		return fmt.Sprintf(`
	SELECT address, lon, lat
	FROM geocode_cache
	WHERE address IN (%s) AND updated_at >= ?;
	`, strings.TrimSuffix(strings.Repeat("?,", n), ","))
	},
	selectArgs: func(addresses []string, cutoff int64) []any {
		args := make([]any, 0, len(addresses)+1)
		for _, a := range addresses {
			args = append(args, a)
		}
		return append(args, cutoff)
	},
	upsert: `
	INSERT OR REPLACE INTO geocode_cache (address, lon, lat, updated_at)
	VALUES (?, ?, ?, ?);
	`,
}

// OpenSqliteGeocodeCache opens (creating if needed) the SQLite file at path
// and ensures the cache table exists. It suits single-node deployments
// without Postgres or Redis.
func OpenSqliteGeocodeCache(ctx context.Context, path string, ttl time.Duration) (*SQLGeocodeCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite geocode cache %q: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verify sqlite connection to %q: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon REAL NOT NULL,
		lat REAL NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT 0
	);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite geocode cache: create geocode_cache: %w", err)
	}

	return &SQLGeocodeCache{DB: db, TTL: ttl, dialect: sqliteDialect, now: time.Now}, nil
}

func (s *SQLGeocodeCache) Close() error { return s.DB.Close() }
