// Package mock provides a deterministic embedder for tests and offline use.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// Embedder generates deterministic embeddings from a text hash.
//
// Identical texts always map to identical vectors, so similarity of a text
// with itself is exactly 1.0, while unrelated texts are close to orthogonal.
// No network access is required.
type Embedder struct {
	dimensions int
}

// New creates a new mock embedder with the given dimensions.
// Dimensions <= 0 defaults to 64.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &Embedder{dimensions: dimensions}
}

// Embed creates a deterministic unit vector from the text hash.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float64, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		// Linear congruential generator seeded by the text hash.
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float64(int64(seed)) / float64(math.MaxInt64)
	}

	return normalize(embedding), nil
}

// EmbedBatch embeds each text independently.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	embeddings := make([][]float64, len(texts))
	for i, text := range texts {
		embedding, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *Embedder) Close() error {
	return nil
}

// normalize converts the embedding to a unit vector.
func normalize(vec []float64) []float64 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
