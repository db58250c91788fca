package database

import (
	"fmt"

	"dispatchai-pro/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string, log logger.Logger) (*sqlx.DB, error) {
	log.Info("🔌 Connecting to database", "url_prefix", dbURL[:min(30, len(dbURL))])

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("✅ Database connection established")
	return db, nil
}

// Fleet collections are stored as ordered JSONB documents; the application
// store is the source of truth at runtime and the database only seeds it.
var documentTables = []string{"drivers", "loads", "daily_logs", "log_edits", "alerts", "tasks", "invoices", "unassigned_events"}

func Migrate(db *sqlx.DB, log logger.Logger) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('driver', 'admin')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,
	}
	for _, table := range documentTables {
		migrations = append(migrations,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				position INT NOT NULL,
				doc JSONB NOT NULL
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_position ON %s(position)`, table, table),
		)
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Info("✓ Database migrations completed")
	return nil
}
