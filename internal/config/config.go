package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"route-sequencer-service/internal/domain"
)

// Config is the runtime configuration, read from the environment
// (after cmd/* has loaded an optional .env file).
type Config struct {
	Port        string
	DatabaseURL string
	SeedPath    string
	LogLevel    string

	ORSAPIKey  string
	ORSBaseURL string
	ORSCountry string
	// GeocodeCache selects the geocode cache backend: postgres, sqlite, redis or none.
	GeocodeCache string
	SqlitePath   string
	RedisAddr    string
	CacheTTL     time.Duration

	Depot             domain.Stop
	ReturnToOrigin    bool
	MatrixConcurrency int
	Costs             domain.CostModel
}

func Load() (Config, error) {
	var cfg Config
	var err error

	cfg.Port = Get("PORT", "8080")
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.SeedPath = Get("SEED_PATH", "data/seeds/deliveries.json")
	cfg.LogLevel = Get("LOG_LEVEL", "info")

	cfg.ORSAPIKey = strings.TrimSpace(os.Getenv("ORS_API_KEY"))
	cfg.ORSBaseURL = Get("ORS_BASE_URL", "https://api.openrouteservice.org")
	cfg.ORSCountry = strings.ToUpper(Get("ORS_COUNTRY", "BR"))
	cfg.GeocodeCache = strings.ToLower(Get("GEOCODE_CACHE", "postgres"))
	cfg.SqlitePath = Get("SQLITE_PATH", "data/geocode.db")
	cfg.RedisAddr = Get("REDIS_ADDR", "localhost:6379")

	ttlHours, err := GetInt("GEOCODE_CACHE_TTL_HOURS", 24*30)
	if err != nil {
		return Config{}, err
	}
	cfg.CacheTTL = time.Duration(ttlHours) * time.Hour

	switch cfg.GeocodeCache {
	case "postgres", "sqlite", "redis", "none":
	default:
		return Config{}, fmt.Errorf("config: GEOCODE_CACHE must be postgres, sqlite, redis or none, got %q", cfg.GeocodeCache)
	}

	if cfg.Depot, err = loadDepot(); err != nil {
		return Config{}, err
	}

	if cfg.ReturnToOrigin, err = GetBool("RETURN_TO_ORIGIN", true); err != nil {
		return Config{}, err
	}
	if cfg.MatrixConcurrency, err = GetInt("MATRIX_CONCURRENCY", 5); err != nil {
		return Config{}, err
	}
	if cfg.MatrixConcurrency < 1 {
		return Config{}, fmt.Errorf("config: MATRIX_CONCURRENCY must be >= 1, got %d", cfg.MatrixConcurrency)
	}

	costs := domain.DefaultCostModel()
	floats := []struct {
		key string
		dst *float64
	}{
		{"COST_PER_KM", &costs.CostPerKm},
		{"OVERHEAD_RATE", &costs.OverheadRate},
		{"FUEL_EFFICIENCY_PERCENT", &costs.FuelEfficiencyPercent},
		{"MINUTES_PER_KM", &costs.MinutesPerKm},
		{"TRAFFIC_ALLOWANCE_MINUTES", &costs.TrafficAllowanceMinutes},
	}
	for _, f := range floats {
		if *f.dst, err = GetFloat(f.key, *f.dst); err != nil {
			return Config{}, err
		}
	}
	if err := costs.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.Costs = costs

	return cfg, nil
}

// The depot is the first stop of every built route. Coordinates are preferred;
// DEPOT_ADDRESS is used when they are absent and a geocoder is configured.
func loadDepot() (domain.Stop, error) {
	depot := domain.Stop{ID: Get("DEPOT_ID", "depot")}
	depot.Location.Address = strings.TrimSpace(os.Getenv("DEPOT_ADDRESS"))

	latStr := strings.TrimSpace(os.Getenv("DEPOT_LAT"))
	lngStr := strings.TrimSpace(os.Getenv("DEPOT_LNG"))
	if latStr != "" || lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return domain.Stop{}, fmt.Errorf("config: parse DEPOT_LAT %q: %w", latStr, err)
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return domain.Stop{}, fmt.Errorf("config: parse DEPOT_LNG %q: %w", lngStr, err)
		}
		depot.Location.Coordinates = &domain.Coordinates{Lat: lat, Lon: lng}
	}

	if depot.Location.Coordinates == nil && depot.Location.Address == "" {
		return domain.Stop{}, fmt.Errorf("config: DEPOT_LAT/DEPOT_LNG or DEPOT_ADDRESS is required")
	}
	if err := depot.Validate(); err != nil {
		return domain.Stop{}, fmt.Errorf("config: depot: %w", err)
	}
	return depot, nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return f, nil
}

func GetInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func GetBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return b, nil
}
