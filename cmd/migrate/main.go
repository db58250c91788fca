package main

import (
	"dispatchai-pro/internal/config"
	"dispatchai-pro/internal/database"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/seed"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// Migrates the schema and seeds an empty database without starting the API
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db, log); err != nil {
		log.Fatal("Migration failed", "error", err)
	}

	fixture := seed.Default
	if cfg.FixturePath != "" {
		fixture = func() (*seed.Fixture, error) { return seed.LoadFile(cfg.FixturePath) }
	}
	f, err := fixture()
	if err != nil {
		log.Fatal("Failed to load fixture", "error", err)
	}
	if err := database.SeedFleet(db, f, bcrypt.DefaultCost, log); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}

	data, err := database.LoadFleet(db)
	if err != nil {
		log.Fatal("Failed to read fleet back", "error", err)
	}

	log.Info("Migration completed successfully!",
		"users", len(data.Users),
		"drivers", len(data.Drivers),
		"loads", len(data.Loads),
		"daily_logs", len(data.DailyLogs),
		"pending_edits", countPending(data),
		"invoices", len(data.Invoices),
		"unassigned_events", len(data.UnassignedEvents),
	)
}

func countPending(data store.Data) int {
	n := 0
	for _, e := range data.LogEdits {
		if e.Status == models.EditStatusPending {
			n++
		}
	}
	return n
}
