package intelligence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrew-ai/smartmem-go/pkg/intelligence"
	"github.com/fcrew-ai/smartmem-go/pkg/memstore"
)

// sequentialIDs returns an id generator handing out 1000, 1001, ...
func sequentialIDs() func() int64 {
	next := int64(1000)
	return func() int64 {
		next++
		return next
	}
}

func insertEmbedded(t *testing.T, store *memstore.Store, id int64, content string, vec []float64, importance float64, createdAt time.Time, tags map[string]string) {
	t.Helper()

	require.NoError(t, store.Insert(context.Background(), &memstore.Record{
		ID:             id,
		Content:        content,
		Embedding:      vec,
		Importance:     importance,
		Context:        tags,
		CreatedAt:      createdAt,
		LastAccessedAt: createdAt,
	}))
}

func TestConsolidateMergesSimilarRecords(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewConsolidationManager(store, intelligence.JoinSummarizer{}, sequentialIDs(), 0.95)

	now := time.Now()
	insertEmbedded(t, store, 1, "release is Tuesday", []float64{1, 0, 0}, 0.6,
		now.Add(-2*time.Hour), map[string]string{"topic": "release", "agent": "researcher"})
	insertEmbedded(t, store, 2, "the release happens Tuesday", []float64{0.999, 0.04, 0}, 0.8,
		now.Add(-time.Hour), map[string]string{"agent": "writer"})
	insertEmbedded(t, store, 3, "lunch was pasta", []float64{0, 1, 0}, 0.3,
		now, nil)

	clusters, removed, err := manager.Consolidate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, clusters)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, store.Size())

	// The originals are gone, the unrelated record remains.
	_, err = store.Get(1)
	assert.ErrorIs(t, err, memstore.ErrNotFound)
	_, err = store.Get(2)
	assert.ErrorIs(t, err, memstore.ErrNotFound)
	_, err = store.Get(3)
	assert.NoError(t, err)

	var merged *memstore.Record
	for _, rec := range store.All() {
		if rec.IsConsolidated() {
			merged = rec
		}
	}
	require.NotNil(t, merged)

	// Oldest member first in the joined content and in provenance.
	assert.Equal(t, "release is Tuesday; the release happens Tuesday", merged.Content)
	assert.Equal(t, []int64{1, 2}, merged.ConsolidatedFrom)

	// Maximum importance of the cluster.
	assert.Equal(t, 0.8, merged.Importance)

	// Context union with first writer (oldest) winning on conflicts.
	assert.Equal(t, "release", merged.Context["topic"])
	assert.Equal(t, "researcher", merged.Context["agent"])

	// Fresh access stats.
	assert.Equal(t, int64(0), merged.AccessCount)
}

func TestConsolidateNothingSimilar(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewConsolidationManager(store, intelligence.JoinSummarizer{}, sequentialIDs(), 0.95)

	now := time.Now()
	insertEmbedded(t, store, 1, "a", []float64{1, 0, 0}, 0.5, now, nil)
	insertEmbedded(t, store, 2, "b", []float64{0, 1, 0}, 0.5, now, nil)

	clusters, removed, err := manager.Consolidate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, clusters)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 2, store.Size())
}

func TestConsolidateSkipsConsolidatedRecords(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewConsolidationManager(store, intelligence.JoinSummarizer{}, sequentialIDs(), 0.95)

	now := time.Now()
	insertEmbedded(t, store, 1, "first", []float64{1, 0, 0}, 0.6, now.Add(-time.Hour), nil)
	insertEmbedded(t, store, 2, "second", []float64{1, 0, 0}, 0.6, now, nil)

	clusters, _, err := manager.Consolidate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, clusters)

	// A second run sees only the consolidated record and merges nothing,
	// so summaries never chain.
	clusters, removed, err := manager.Consolidate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, clusters)
	assert.Equal(t, 0, removed)
}

func TestConsolidatedEmbeddingIsNormalizedMean(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewConsolidationManager(store, intelligence.JoinSummarizer{}, sequentialIDs(), 0.9)

	now := time.Now()
	insertEmbedded(t, store, 1, "a", []float64{1, 0.1, 0}, 0.5, now.Add(-time.Hour), nil)
	insertEmbedded(t, store, 2, "b", []float64{1, 0, 0.1}, 0.5, now, nil)

	_, _, err := manager.Consolidate(context.Background())
	require.NoError(t, err)

	var merged *memstore.Record
	for _, rec := range store.All() {
		if rec.IsConsolidated() {
			merged = rec
		}
	}
	require.NotNil(t, merged)

	norm := 0.0
	for _, v := range merged.Embedding {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, intelligence.CosineSimilarity([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, intelligence.CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, intelligence.CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)

	// Mismatched dimensions and zero vectors yield 0.
	assert.Equal(t, 0.0, intelligence.CosineSimilarity([]float64{1, 0}, []float64{1}))
	assert.Equal(t, 0.0, intelligence.CosineSimilarity([]float64{0, 0}, []float64{1, 0}))
}
