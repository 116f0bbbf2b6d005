package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"route-sequencer-service/internal/adapters/cache"
	"route-sequencer-service/internal/adapters/distance"
	"route-sequencer-service/internal/adapters/repositories"
	"route-sequencer-service/internal/api"
	"route-sequencer-service/internal/api/handlers"
	"route-sequencer-service/internal/config"
	"route-sequencer-service/internal/platform/db"
	"route-sequencer-service/internal/platform/obs"
	"route-sequencer-service/internal/ports"
	"route-sequencer-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, ORS, geocode caches) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	obs.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		deliveries ports.DeliveryRepository
		vehicles   ports.VehicleRepository
		routes     ports.RouteRepository
		conn       *sql.DB
		storage    handlers.Pinger
	)

	if cfg.DatabaseURL != "" {
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		if err := db.Migrate(conn); err != nil {
			log.Fatal(err)
		}

		deliveries = repositories.NewPostgresDeliveryRepository(conn)
		vehicles = repositories.NewPostgresVehicleRepository(conn)
		routes = repositories.NewPostgresRouteRepository(conn)
		storage = conn
	} else {
		// Local runs without Postgres keep everything in memory, seeded from disk.
		store, err := repositories.NewMemoryStoreFromSeed(cfg.SeedPath)
		if err != nil {
			log.Fatal(err)
		}
		log.WithField("seed_path", cfg.SeedPath).Warn("DATABASE_URL not set, using in-memory store")
		deliveries, vehicles, routes = store, store, store
	}

	resolver, closeCache, err := newResolver(ctx, cfg, conn)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	sequencer, err := services.NewRouteSequencer(resolver, cfg.Costs, cfg.ReturnToOrigin)
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(api.Deps{
		Storage:           storage,
		Deliveries:        deliveries,
		Vehicles:          vehicles,
		Routes:            routes,
		Sequencer:         sequencer,
		Depot:             cfg.Depot,
		MatrixConcurrency: cfg.MatrixConcurrency,
	})

	// Timeouts are tuned for cold-cache geocoding (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newResolver picks the distance resolver. Without an ORS key only stops that
// carry coordinates can be sequenced; with one, addresses are geocoded through
// the configured cache.
func newResolver(ctx context.Context, cfg config.Config, conn *sql.DB) (ports.DistanceResolver, func(), error) {
	noop := func() {}
	if cfg.ORSAPIKey == "" {
		log.Warn("ORS_API_KEY not set, only stops with coordinates can be sequenced")
		return distance.CoordinateResolver{}, noop, nil
	}

	var (
		geocodeCache ports.GeocodeCache
		closeCache   = noop
	)
	switch cfg.GeocodeCache {
	case "postgres":
		if conn == nil {
			log.Warn("GEOCODE_CACHE=postgres needs DATABASE_URL, geocode cache disabled")
			break
		}
		geocodeCache = cache.NewPostgresGeocodeCache(conn, cfg.CacheTTL)
	case "sqlite":
		c, err := cache.OpenSqliteGeocodeCache(ctx, cfg.SqlitePath, cfg.CacheTTL)
		if err != nil {
			return nil, noop, err
		}
		geocodeCache = c
		closeCache = func() { _ = c.Close() }
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		geocodeCache = cache.NewRedisGeocodeCache(client, cfg.CacheTTL)
		closeCache = func() { _ = client.Close() }
	}

	geocoder, err := distance.NewORSGeocoder(cfg.ORSAPIKey, geocodeCache,
		distance.WithBaseURL(cfg.ORSBaseURL),
		distance.WithCountry(cfg.ORSCountry),
	)
	if err != nil {
		closeCache()
		return nil, noop, err
	}

	log.WithField("geocode_cache", cfg.GeocodeCache).Info("geocoding enabled")
	return distance.NewGeocodingResolver(geocoder), closeCache, nil
}
