package cmd

import (
	"context"
	"fmt"

	"github.com/quocbao/facegate/internal/config"
	"github.com/quocbao/facegate/internal/identity"
	"github.com/quocbao/facegate/internal/identity/filestore"
	"github.com/quocbao/facegate/internal/identity/postgres"
)

// openStore picks the identity store backend: PostgreSQL when DATABASE_URL
// is set, otherwise the single-file JSON database. The returned cleanup
// releases the backend.
func openStore(ctx context.Context, cfg *config.Config) (identity.Store, func(), error) {
	if cfg.Database.URL != "" {
		pool, err := postgres.NewPool(&postgres.Config{
			URL:          cfg.Database.URL,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		if err := pool.Migrate(ctx, cfg.Embedding.Dim); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrating identity database: %w", err)
		}
		fmt.Println("Using PostgreSQL identity store")
		return postgres.NewIdentityRepository(pool, cfg.Embedding.Dim), func() { pool.Close() }, nil
	}

	store, err := filestore.New(cfg.Identity.DBPath, cfg.Embedding.Dim)
	if err != nil {
		return nil, nil, fmt.Errorf("opening identity database: %w", err)
	}
	fmt.Printf("Using file identity store at %s (%d identities)\n", store.Path(), store.Len())
	return store, func() {}, nil
}
