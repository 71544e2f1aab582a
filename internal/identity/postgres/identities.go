package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/quocbao/facegate/internal/identity"
)

// IdentityRepository is a PostgreSQL-backed identity.Store.
type IdentityRepository struct {
	pool *Pool
	dim  int
}

// NewIdentityRepository creates a repository over the pool. dim must match
// the dimensionality the table was migrated with.
func NewIdentityRepository(pool *Pool, dim int) *IdentityRepository {
	return &IdentityRepository{pool: pool, dim: dim}
}

// All returns every identity ordered by name.
func (r *IdentityRepository) All(ctx context.Context) ([]identity.Record, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT name, embedding FROM identities ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying identities: %w", err)
	}
	defer rows.Close()

	var records []identity.Record
	for rows.Next() {
		var name string
		var vec pgvector.Vector
		if err := rows.Scan(&name, &vec); err != nil {
			return nil, fmt.Errorf("scanning identity row: %w", err)
		}
		records = append(records, identity.Record{Name: name, Embedding: vec.Slice()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating identities: %w", err)
	}
	return records, nil
}

// Get returns the record for name.
func (r *IdentityRepository) Get(ctx context.Context, name string) (identity.Record, error) {
	var vec pgvector.Vector
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT embedding FROM identities WHERE name = $1", name).Scan(&vec)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Record{}, identity.ErrNotFound
	}
	if err != nil {
		return identity.Record{}, fmt.Errorf("querying identity %q: %w", name, err)
	}
	return identity.Record{Name: name, Embedding: vec.Slice()}, nil
}

// Upsert inserts or replaces the record for name. The new embedding
// replaces any previous one entirely.
func (r *IdentityRepository) Upsert(ctx context.Context, name string, embedding []float32) error {
	if name == "" {
		return identity.ErrEmptyName
	}
	if len(embedding) != r.dim {
		return fmt.Errorf("identity %q: %w (got %d, want %d)",
			name, identity.ErrDimensionMismatch, len(embedding), r.dim)
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO identities (name, embedding, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = NOW()
	`, name, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("upserting identity %q: %w", name, err)
	}
	return nil
}

// Delete removes the record for name.
func (r *IdentityRepository) Delete(ctx context.Context, name string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM identities WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("deleting identity %q: %w", name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting identity %q: %w", name, err)
	}
	if affected == 0 {
		return identity.ErrNotFound
	}
	return nil
}
