// Package identity implements the face identity core: the enrolled identity
// store contract, cosine-similarity matching, the enrollment state machine
// and the per-frame dispatcher that ties them together.
package identity

import (
	"context"
	"errors"
)

// Unknown is the name reported when no enrolled identity matches.
const Unknown = "Unknown"

// DefaultThreshold is the minimum cosine similarity required to accept a
// match as a known identity.
const DefaultThreshold = 0.6

// DefaultEnrollTarget is the number of face embeddings collected per
// enrollment before the mean is committed.
const DefaultEnrollTarget = 20

var (
	// ErrNotFound is returned when an identity name is not in the store.
	ErrNotFound = errors.New("identity not found")

	// ErrDimensionMismatch is returned when an embedding's length does not
	// match the dimensionality the store was configured with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyName is returned when an operation requires an identity name
	// and none was given.
	ErrEmptyName = errors.New("identity name is required")
)

// Record is one enrolled identity: a display name and the reference
// embedding committed by a completed enrollment.
type Record struct {
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
}

// Store persists enrolled identities. At most one record exists per name;
// Upsert replaces an existing reference embedding entirely.
type Store interface {
	// All returns every enrolled identity ordered by name. An empty store
	// returns an empty slice, never an error for "nothing enrolled yet".
	All(ctx context.Context) ([]Record, error)

	// Get returns the record for name or ErrNotFound.
	Get(ctx context.Context, name string) (Record, error)

	// Upsert inserts or replaces the record for name and persists the
	// change immediately.
	Upsert(ctx context.Context, name string, embedding []float32) error

	// Delete removes the record for name and persists the change.
	// Returns ErrNotFound if the name is not enrolled.
	Delete(ctx context.Context, name string) error
}

// MatchResult is the outcome of matching one embedding against the store.
// Name is Unknown when the store is empty or the best similarity falls
// below the threshold; Score still carries the best similarity so callers
// can display confidence.
type MatchResult struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Known reports whether the result identifies an enrolled person.
func (r MatchResult) Known() bool {
	return r.Name != Unknown
}

// Detection is a single face found in a frame: its embedding plus the
// bounding box and detector confidence, in the order the detector
// returned them.
type Detection struct {
	Embedding []float32
	BBox      []float64 // [x1, y1, x2, y2]
	Score     float64
}

// Detector extracts face embeddings from a raw image. No detected face is
// an empty slice with a nil error, never an error.
type Detector interface {
	DetectFaces(ctx context.Context, image []byte) ([]Detection, error)
}
