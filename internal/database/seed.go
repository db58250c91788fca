package database

import (
	"encoding/json"
	"fmt"

	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/seed"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/pkg/logger"

	"github.com/jmoiron/sqlx"
)

type document struct {
	ID  string
	Doc interface{}
}

// SeedFleet writes the fixture into empty tables. A database that already
// has users is left alone.
func SeedFleet(db *sqlx.DB, f *seed.Fixture, cost int, log logger.Logger) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}
	if count > 0 {
		log.Info("✓ Fleet already seeded, skipping...")
		return nil
	}

	users, err := f.HashUsers(cost)
	if err != nil {
		return err
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range users {
		if _, err := tx.NamedExec(`
			INSERT INTO users (id, email, password, name, role, created_at)
			VALUES (:id, :email, :password, :name, :role, :created_at)
		`, u); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
		}
	}

	collections := map[string][]document{
		"drivers":    documents(f.Drivers, func(d models.Driver) string { return d.ID }),
		"loads":      documents(f.Loads, func(l models.Load) string { return l.ID }),
		"daily_logs": documents(f.DailyLogs, func(l models.DailyLog) string { return l.ID }),
		"log_edits":  documents(f.LogEdits, func(e models.LogEditRequest) string { return e.ID }),
		"alerts":     documents(f.Alerts, func(a models.Alert) string { return a.ID }),
		"tasks":      documents(f.Tasks, func(t models.Task) string { return t.ID }),
		"invoices":   documents(f.Invoices, func(i models.Invoice) string { return i.ID }),

		"unassigned_events": documents(f.UnassignedEvents, func(e models.UnassignedEvent) string { return e.ID }),
	}
	for _, table := range documentTables {
		if err := insertDocuments(tx, table, collections[table]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("🌱 Fleet seeded", "users", len(users), "drivers", len(f.Drivers), "loads", len(f.Loads), "logs", len(f.DailyLogs))
	return nil
}

func documents[T any](items []T, id func(T) string) []document {
	out := make([]document, len(items))
	for i, item := range items {
		out[i] = document{ID: id(item), Doc: item}
	}
	return out
}

func insertDocuments(tx *sqlx.Tx, table string, docs []document) error {
	query := fmt.Sprintf("INSERT INTO %s (id, position, doc) VALUES ($1, $2, $3)", table)
	for i, d := range docs {
		raw, err := json.Marshal(d.Doc)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", table, d.ID, err)
		}
		if _, err := tx.Exec(query, d.ID, i, raw); err != nil {
			return fmt.Errorf("failed to insert %s %s: %w", table, d.ID, err)
		}
	}
	return nil
}

// LoadFleet reads every collection back in seed order
func LoadFleet(db *sqlx.DB) (store.Data, error) {
	var data store.Data

	if err := db.Select(&data.Users, `SELECT id, email, password, name, role, created_at FROM users ORDER BY created_at, id`); err != nil {
		return store.Data{}, fmt.Errorf("failed to load users: %w", err)
	}

	var err error
	if data.Drivers, err = loadDocuments[models.Driver](db, "drivers"); err != nil {
		return store.Data{}, err
	}
	if data.Loads, err = loadDocuments[models.Load](db, "loads"); err != nil {
		return store.Data{}, err
	}
	if data.DailyLogs, err = loadDocuments[models.DailyLog](db, "daily_logs"); err != nil {
		return store.Data{}, err
	}
	if data.LogEdits, err = loadDocuments[models.LogEditRequest](db, "log_edits"); err != nil {
		return store.Data{}, err
	}
	if data.Alerts, err = loadDocuments[models.Alert](db, "alerts"); err != nil {
		return store.Data{}, err
	}
	if data.Tasks, err = loadDocuments[models.Task](db, "tasks"); err != nil {
		return store.Data{}, err
	}
	if data.Invoices, err = loadDocuments[models.Invoice](db, "invoices"); err != nil {
		return store.Data{}, err
	}
	if data.UnassignedEvents, err = loadDocuments[models.UnassignedEvent](db, "unassigned_events"); err != nil {
		return store.Data{}, err
	}
	return data, nil
}

func loadDocuments[T any](db *sqlx.DB, table string) ([]T, error) {
	var rows [][]byte
	if err := db.Select(&rows, fmt.Sprintf("SELECT doc FROM %s ORDER BY position", table)); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}

	out := make([]T, 0, len(rows))
	for _, raw := range rows {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", table, err)
		}
		out = append(out, item)
	}
	return out, nil
}
