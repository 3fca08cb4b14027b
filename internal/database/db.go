// Package database persists template catalogs and generated levels in
// PostgreSQL.
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/levelforge/server/internal/config"
)

// Open connects to PostgreSQL with the configured pool settings and
// verifies the connection.
func Open(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables the server needs if they do not exist.
func EnsureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			id SERIAL PRIMARY KEY,
			tag TEXT NOT NULL UNIQUE,
			width DOUBLE PRECISION NOT NULL,
			height DOUBLE PRECISION NOT NULL,
			weight DOUBLE PRECISION NOT NULL DEFAULT 1,
			rotatable BOOLEAN NOT NULL DEFAULT FALSE,
			contexts JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS levels (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			seed BIGINT NOT NULL,
			chunk_count INTEGER NOT NULL,
			template_tags TEXT[] NOT NULL DEFAULT '{}',
			exhausted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS level_chunks (
			id SERIAL PRIMARY KEY,
			level_id INTEGER NOT NULL REFERENCES levels(id) ON DELETE CASCADE,
			ord INTEGER NOT NULL,
			tag TEXT NOT NULL,
			x DOUBLE PRECISION NOT NULL,
			y DOUBLE PRECISION NOT NULL,
			w DOUBLE PRECISION NOT NULL,
			h DOUBLE PRECISION NOT NULL,
			contexts JSONB NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_level_chunks_level_id ON level_chunks(level_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
