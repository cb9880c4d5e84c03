package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a database connection
type DB struct {
	*sql.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			city       TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

// SessionCity returns the last city stored for a visitor session.
// ok is false when the session has never been saved.
func (d *DB) SessionCity(ctx context.Context, id string) (city string, ok bool, err error) {
	if d == nil || d.DB == nil {
		return "", false, fmt.Errorf("database not initialized")
	}

	err = d.QueryRowContext(ctx, "SELECT city FROM sessions WHERE id = ?", id).Scan(&city)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load session %q: %w", id, err)
	}
	return city, true, nil
}

// SaveSessionCity upserts the city for a visitor session.
func (d *DB) SaveSessionCity(ctx context.Context, id, city string) error {
	if d == nil || d.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	_, err := d.ExecContext(ctx, `
		INSERT INTO sessions (id, city, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET city = excluded.city, updated_at = excluded.updated_at`,
		id, city,
	)
	if err != nil {
		return fmt.Errorf("failed to save session %q: %w", id, err)
	}
	return nil
}
