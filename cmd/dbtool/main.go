package main

import (
	"context"
	"flag"
	"route-sequencer-service/internal/adapters/repositories"
	"route-sequencer-service/internal/config"
	"route-sequencer-service/internal/platform/db"
	"route-sequencer-service/internal/platform/obs"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	seed := flag.Bool("seed", true, "load the seed file after migrating")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}
	obs.Setup(config.Get("LOG_LEVEL", "info"))

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Info("Applying migrations...")
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Info("Schema ready.")

	if !*seed {
		return
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/deliveries.json")
	log.WithField("seed_path", seedPath).Info("Seeding database...")
	if err := repositories.SeedFromJSON(context.Background(), conn, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Info("Seeding complete.")
}
