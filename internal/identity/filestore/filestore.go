// Package filestore persists enrolled identities as a JSON mapping of
// name to embedding in a single file. The whole mapping is rewritten
// atomically on every mutation, so a crash never corrupts previously
// committed identities.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/quocbao/facegate/internal/identity"
)

// Store is a file-backed identity.Store. The mapping is held in memory and
// flushed to disk immediately after each mutation; a save failure leaves
// the in-memory state updated and is surfaced to the caller.
type Store struct {
	mu   sync.RWMutex
	path string
	dim  int // expected embedding length, 0 = fixed by first insert
	refs map[string][]float32
}

// New opens the store at path, loading any existing mapping. A missing
// file means no identities yet, not an error. dim fixes the embedding
// dimensionality; 0 adopts the dimensionality of the first insert (or of
// the loaded data).
func New(path string, dim int) (*Store, error) {
	s := &Store{
		path: path,
		dim:  dim,
		refs: make(map[string][]float32),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading identity database %s: %w", path, err)
	}

	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.refs); err != nil {
		return nil, fmt.Errorf("parsing identity database %s: %w", path, err)
	}

	for name, emb := range s.refs {
		if s.dim == 0 {
			s.dim = len(emb)
		}
		if len(emb) != s.dim {
			return nil, fmt.Errorf("identity %q in %s: %w (got %d, want %d)",
				name, path, identity.ErrDimensionMismatch, len(emb), s.dim)
		}
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of enrolled identities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refs)
}

// All returns every identity ordered by name.
func (s *Store) All(ctx context.Context) ([]identity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.refs))
	for name := range s.refs {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]identity.Record, 0, len(names))
	for _, name := range names {
		records = append(records, identity.Record{Name: name, Embedding: s.refs[name]})
	}
	return records, nil
}

// Get returns the record for name.
func (s *Store) Get(ctx context.Context, name string) (identity.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emb, ok := s.refs[name]
	if !ok {
		return identity.Record{}, identity.ErrNotFound
	}
	return identity.Record{Name: name, Embedding: emb}, nil
}

// Upsert inserts or replaces the record for name and flushes the mapping
// to disk. The new embedding replaces any previous one entirely.
func (s *Store) Upsert(ctx context.Context, name string, embedding []float32) error {
	if name == "" {
		return identity.ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 {
		s.dim = len(embedding)
	}
	if len(embedding) != s.dim {
		return fmt.Errorf("identity %q: %w (got %d, want %d)",
			name, identity.ErrDimensionMismatch, len(embedding), s.dim)
	}

	s.refs[name] = embedding
	return s.save()
}

// Delete removes the record for name and flushes the mapping to disk.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.refs[name]; !ok {
		return identity.ErrNotFound
	}
	delete(s.refs, name)
	return s.save()
}

// save writes the full mapping to a temporary file and renames it over the
// target, so readers never observe a partial write. Callers hold s.mu.
func (s *Store) save() error {
	data, err := json.Marshal(s.refs)
	if err != nil {
		return fmt.Errorf("encoding identity database: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for identity database: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing identity database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing identity database temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing identity database %s: %w", s.path, err)
	}
	return nil
}
