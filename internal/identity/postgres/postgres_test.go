//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/quocbao/facegate/internal/identity"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testDim = 8

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(&Config{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx, testDim); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func testEmbedding(seed float32) []float32 {
	embedding := make([]float32, testDim)
	for i := range embedding {
		embedding[i] = seed + float32(i)/float32(testDim)
	}
	return embedding
}

func TestIdentityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(pool, testDim)

	t.Run("UpsertAndGet", func(t *testing.T) {
		embedding := testEmbedding(1)
		if err := repo.Upsert(ctx, "alice", embedding); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}

		got, err := repo.Get(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if got.Name != "alice" {
			t.Errorf("Expected name 'alice', got '%s'", got.Name)
		}
		if len(got.Embedding) != testDim {
			t.Fatalf("Expected %d dimensions, got %d", testDim, len(got.Embedding))
		}
		for i := range embedding {
			if got.Embedding[i] != embedding[i] {
				t.Errorf("Dimension %d: expected %f, got %f", i, embedding[i], got.Embedding[i])
			}
		}
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		replacement := testEmbedding(5)
		if err := repo.Upsert(ctx, "alice", replacement); err != nil {
			t.Fatalf("Failed to upsert replacement: %v", err)
		}

		got, err := repo.Get(ctx, "alice")
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if got.Embedding[0] != replacement[0] {
			t.Errorf("Expected replaced embedding, got %f", got.Embedding[0])
		}

		records, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("Expected 1 record after replacement, got %d", len(records))
		}
	})

	t.Run("UpsertRejectsWrongDimension", func(t *testing.T) {
		err := repo.Upsert(ctx, "bob", make([]float32, testDim+1))
		if !errors.Is(err, identity.ErrDimensionMismatch) {
			t.Errorf("Expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("AllOrderedByName", func(t *testing.T) {
		if err := repo.Upsert(ctx, "charlie", testEmbedding(2)); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
		if err := repo.Upsert(ctx, "bob", testEmbedding(3)); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}

		records, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}
		for i, want := range []string{"alice", "bob", "charlie"} {
			if records[i].Name != want {
				t.Errorf("Record %d: expected '%s', got '%s'", i, want, records[i].Name)
			}
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.Get(ctx, "nonexistent")
		if !errors.Is(err, identity.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "charlie"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if _, err := repo.Get(ctx, "charlie"); !errors.Is(err, identity.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, "charlie"); !errors.Is(err, identity.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("MatcherOverRepository", func(t *testing.T) {
		matcher := identity.NewMatcher(repo, identity.DefaultThreshold)

		result, err := matcher.Match(ctx, testEmbedding(3))
		if err != nil {
			t.Fatalf("Failed to match: %v", err)
		}
		if result.Name != "bob" {
			t.Errorf("Expected match 'bob', got '%s' (score %f)", result.Name, result.Score)
		}
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	if err := pool.Migrate(context.Background(), testDim); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
}
