package intelligence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrew-ai/smartmem-go/pkg/intelligence"
	"github.com/fcrew-ai/smartmem-go/pkg/memstore"
	"github.com/fcrew-ai/smartmem-go/pkg/storage/inmem"
)

func newTestStore(t *testing.T) *memstore.Store {
	t.Helper()

	store, err := memstore.NewStore(context.Background(), inmem.NewClient(), memstore.Config{
		AccessBoost: 0.1,
	})
	require.NoError(t, err)
	return store
}

func testForgettingConfig(maxMemories int) intelligence.ForgettingConfig {
	return intelligence.ForgettingConfig{
		MaxMemories:       maxMemories,
		DecayRate:         0.5,
		HalfLife:          24 * time.Hour,
		ImportanceFloor:   0.01,
		CriticalThreshold: 0.9,
	}
}

func insertAged(t *testing.T, store *memstore.Store, id int64, importance float64, lastAccess time.Time, accessCount int64) {
	t.Helper()

	require.NoError(t, store.Insert(context.Background(), &memstore.Record{
		ID:             id,
		Content:        "note",
		Embedding:      []float64{1, 0},
		Importance:     importance,
		CreatedAt:      lastAccess,
		LastAccessedAt: lastAccess,
		AccessCount:    accessCount,
	}))
}

func TestDecayTickHalvesAfterOneHalfLife(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(100))

	now := time.Now()
	insertAged(t, store, 1, 0.8, now.Add(-24*time.Hour), 0)

	require.NoError(t, manager.DecayTick(context.Background(), now))

	rec, err := store.Get(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, rec.Importance, 1e-9)
}

func TestDecayTickIsFloored(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(100))

	now := time.Now()
	// Ten half-lives would take 0.8 down to ~0.00078, below the floor.
	insertAged(t, store, 1, 0.8, now.Add(-240*time.Hour), 0)

	require.NoError(t, manager.DecayTick(context.Background(), now))

	rec, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 0.01, rec.Importance)
}

func TestDecayTickSkipsFreshRecords(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(100))

	now := time.Now()
	insertAged(t, store, 1, 0.8, now, 0)

	require.NoError(t, manager.DecayTick(context.Background(), now))

	rec, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 0.8, rec.Importance)
}

func TestDecayPreservesOrdering(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(100))

	now := time.Now()
	lastAccess := now.Add(-48 * time.Hour)
	insertAged(t, store, 1, 0.9, lastAccess, 0)
	insertAged(t, store, 2, 0.4, lastAccess, 0)

	require.NoError(t, manager.DecayTick(context.Background(), now))

	higher, err := store.Get(1)
	require.NoError(t, err)
	lower, err := store.Get(2)
	require.NoError(t, err)

	// Equal elapsed time scales both by the same factor, so the relative
	// order is unchanged.
	assert.Greater(t, higher.Importance, lower.Importance)
}

func TestEnforceCapacityEvictsLowestValue(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(2))

	now := time.Now().Add(-time.Hour)
	insertAged(t, store, 1, 0.85, now, 0)
	insertAged(t, store, 2, 0.2, now, 0)
	insertAged(t, store, 3, 0.5, now, 0)

	evicted, err := manager.EnforceCapacity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 2, store.Size())

	_, err = store.Get(2)
	assert.ErrorIs(t, err, memstore.ErrNotFound)
}

func TestEnforceCapacityFavorsFrequentlyAccessed(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(1))

	now := time.Now().Add(-time.Hour)
	// Same importance, but one record has been recalled often.
	insertAged(t, store, 1, 0.5, now, 20)
	insertAged(t, store, 2, 0.5, now, 0)

	evicted, err := manager.EnforceCapacity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	_, err = store.Get(1)
	assert.NoError(t, err)
	_, err = store.Get(2)
	assert.ErrorIs(t, err, memstore.ErrNotFound)
}

func TestEnforceCapacityNeverEvictsCritical(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(2))

	now := time.Now().Add(-time.Hour)
	insertAged(t, store, 1, 0.95, now, 0)
	insertAged(t, store, 2, 0.92, now, 0)
	insertAged(t, store, 3, 0.3, now, 0)

	evicted, err := manager.EnforceCapacity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	// Both critical records survive; the non-critical one is gone.
	_, err = store.Get(1)
	assert.NoError(t, err)
	_, err = store.Get(2)
	assert.NoError(t, err)
	_, err = store.Get(3)
	assert.ErrorIs(t, err, memstore.ErrNotFound)
}

func TestEnforceCapacityDeadlock(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(1))

	now := time.Now().Add(-time.Hour)
	insertAged(t, store, 1, 0.95, now, 0)
	insertAged(t, store, 2, 0.99, now, 0)

	evicted, err := manager.EnforceCapacity(context.Background())
	assert.ErrorIs(t, err, intelligence.ErrEvictionDeadlock)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, 2, store.Size())
}

func TestEnforceCapacityNoopUnderLimit(t *testing.T) {
	store := newTestStore(t)
	manager := intelligence.NewForgettingManager(store, testForgettingConfig(10))

	insertAged(t, store, 1, 0.5, time.Now(), 0)

	evicted, err := manager.EnforceCapacity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, evicted)
	assert.Equal(t, 1, store.Size())
}
