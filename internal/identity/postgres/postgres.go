// Package postgres provides a PostgreSQL-backed identity store using
// pgvector for the reference embeddings, for deployments that already run
// Postgres instead of the default single-file database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Pool manages a PostgreSQL connection pool.
type Pool struct {
	db *sql.DB
}

// Config holds the connection settings for the identity database.
type Config struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// NewPool creates a new PostgreSQL connection pool and verifies the
// connection.
func NewPool(cfg *Config) (*Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{db: db}, nil
}

// DB returns the underlying sql.DB for direct access.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Migrate creates the identities table and the pgvector extension. dim
// fixes the embedding column dimensionality.
func (p *Pool) Migrate(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("embedding dimensionality must be positive, got %d", dim)
	}

	if _, err := p.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS identities (
			name TEXT PRIMARY KEY,
			embedding VECTOR(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, dim)
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating identities table: %w", err)
	}
	return nil
}
