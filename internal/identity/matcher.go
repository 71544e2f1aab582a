package identity

import (
	"context"
	"fmt"
)

// Matcher finds the best-matching enrolled identity for a query embedding
// using a linear cosine-similarity scan. The store holds tens of identities
// at most, so a scan in name order is both fast enough and deterministic.
type Matcher struct {
	store     Store
	threshold float64
}

// NewMatcher creates a matcher over the given store. A threshold <= 0
// falls back to DefaultThreshold.
func NewMatcher(store Store, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		store:     store,
		threshold: threshold,
	}
}

// Threshold returns the minimum similarity accepted as a known identity.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match compares the embedding against every enrolled reference and returns
// the best match. An empty store yields (Unknown, 0). When the best
// similarity is below the threshold the verdict is Unknown but the score is
// still the best similarity found. Ties keep the first maximum in name
// order.
func (m *Matcher) Match(ctx context.Context, embedding []float32) (MatchResult, error) {
	records, err := m.store.All(ctx)
	if err != nil {
		return MatchResult{Name: Unknown}, fmt.Errorf("reading identity store: %w", err)
	}

	if len(records) == 0 {
		return MatchResult{Name: Unknown, Score: 0}, nil
	}

	bestName := Unknown
	bestScore := -1.0
	for _, rec := range records {
		score := CosineSimilarity(embedding, rec.Embedding)
		if score > bestScore {
			bestScore = score
			bestName = rec.Name
		}
	}

	if bestScore < m.threshold {
		bestName = Unknown
	}

	return MatchResult{Name: bestName, Score: bestScore}, nil
}
