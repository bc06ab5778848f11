// Package embedder defines the port for text embedding providers.
//
// Memories and recall queries are embedded through this port; the memory
// layer itself never computes embeddings. Subpackages hold the concrete
// providers: openai for the remote API and mock for deterministic offline
// vectors.
package embedder

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable indicates that the embedding provider failed.
//
// The error always propagates to the caller. A failed embedding is never
// replaced by a zero vector, since a zero vector would silently match
// nothing and corrupt similarity ranking.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

// Provider converts text into fixed-length vectors.
type Provider interface {
	// Embed converts one text into a vector. Provider failures are
	// reported as errors wrapping ErrEmbeddingUnavailable.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch embeds several texts in one call where the backend
	// supports it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the length of every vector this provider
	// produces.
	Dimensions() int

	// Close releases any resources held by the provider.
	Close() error
}
