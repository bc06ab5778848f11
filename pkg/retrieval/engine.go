// Package retrieval implements similarity search with contextual re-ranking
// over the memory store.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fcrew-ai/smartmem-go/pkg/embedder"
	"github.com/fcrew-ai/smartmem-go/pkg/memstore"
)

// Weights controls how similarity, importance, and recency combine into the
// final relevance score. The defaults heavily favor similarity.
type Weights struct {
	// Similarity is the weight of cosine similarity with the query embedding.
	Similarity float64

	// Importance is the weight of the record's importance score.
	Importance float64

	// Recency is the weight of the recency decay term.
	Recency float64

	// RecencyHalfLife is the time after which the recency term halves,
	// measured from the record's last access.
	RecencyHalfLife time.Duration
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Similarity:      0.7,
		Importance:      0.2,
		Recency:         0.1,
		RecencyHalfLife: 24 * time.Hour,
	}
}

// Engine performs similarity-based recall over a memory store.
//
// Every returned record is touched as a side effect: retrieval itself
// reinforces memory.
type Engine struct {
	store    *memstore.Store
	embedder embedder.Provider
	weights  Weights
}

// NewEngine creates a retrieval engine over the given store and embedder.
func NewEngine(store *memstore.Store, provider embedder.Provider, weights Weights) *Engine {
	return &Engine{
		store:    store,
		embedder: provider,
		weights:  weights,
	}
}

// scored pairs a record with its computed relevance.
type scored struct {
	rec   *memstore.Record
	score float64
}

// Recall returns up to topK records relevant to the query, most relevant
// first.
//
// Candidates are restricted to records whose context tags contain every pair
// in filter (a nil filter matches all). The final score combines embedding
// similarity, importance, and recency per the engine's weights. Ties break by
// higher importance, then more recent creation, then smaller id, so results
// are deterministic.
//
// An empty store or an unmatched filter yields an empty slice, not an error.
// topK <= 0 fails with ErrInvalidArgument. Embedding failures propagate; no
// zero-vector fallback is ever substituted.
func (e *Engine) Recall(ctx context.Context, query string, topK int, filter map[string]string) ([]*memstore.Record, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("retrieval: recall top_k %d: %w", topK, memstore.ErrInvalidArgument)
	}

	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: recall: %w", err)
	}

	now := time.Now()
	var candidates []scored
	for _, rec := range e.store.All() {
		if !rec.MatchesContext(filter) {
			continue
		}
		sim := cosineSimilarity(queryEmbedding, rec.Embedding)
		candidates = append(candidates, scored{
			rec:   rec,
			score: e.weights.Similarity*sim + e.weights.Importance*rec.Importance + e.weights.Recency*e.recency(rec, now),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.rec.Importance != b.rec.Importance {
			return a.rec.Importance > b.rec.Importance
		}
		if !a.rec.CreatedAt.Equal(b.rec.CreatedAt) {
			return a.rec.CreatedAt.After(b.rec.CreatedAt)
		}
		return a.rec.ID < b.rec.ID
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	results := make([]*memstore.Record, 0, len(candidates))
	for _, cand := range candidates {
		if err := e.store.Touch(ctx, cand.rec.ID); err != nil {
			// The record may have been evicted between the snapshot and the
			// touch; reinforcement is best-effort and skipping is harmless.
			if errors.Is(err, memstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("retrieval: recall: %w", err)
		}
		touched, err := e.store.Get(cand.rec.ID)
		if err != nil {
			if errors.Is(err, memstore.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("retrieval: recall: %w", err)
		}
		results = append(results, touched)
	}

	return results, nil
}

// recency computes the recency decay term: 0.5^(elapsed / half_life),
// measured from the record's last access.
func (e *Engine) recency(rec *memstore.Record, now time.Time) float64 {
	if e.weights.RecencyHalfLife <= 0 {
		return 0
	}
	elapsed := now.Sub(rec.LastAccessedAt)
	if elapsed <= 0 {
		return 1
	}
	return math.Pow(0.5, elapsed.Hours()/e.weights.RecencyHalfLife.Hours())
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
