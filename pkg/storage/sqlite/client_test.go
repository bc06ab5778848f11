package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrew-ai/smartmem-go/pkg/storage"
	"github.com/fcrew-ai/smartmem-go/pkg/storage/sqlite"
)

func newTestClient(t *testing.T, dbPath string) *sqlite.Client {
	t.Helper()

	client, err := sqlite.NewClient(&sqlite.Config{DBPath: dbPath})
	require.NoError(t, err)
	require.NotNil(t, client)
	return client
}

func testRecord(id int64) *storage.Record {
	now := time.Now().UTC().Truncate(time.Second)
	return &storage.Record{
		ID:             id,
		Content:        "the release ships Tuesday",
		Embedding:      []float64{0.1, 0.2, 0.3},
		Importance:     0.8,
		Context:        map[string]string{"topic": "release", "agent": "researcher"},
		CreatedAt:      now,
		LastAccessedAt: now,
		AccessCount:    0,
	}
}

func TestInsertAndLoadRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memories.db")
	ctx := context.Background()

	client := newTestClient(t, dbPath)
	rec := testRecord(1)
	rec.AccessCount = 3
	rec.ConsolidatedFrom = []int64{10, 11}
	require.NoError(t, client.Insert(ctx, rec))
	require.NoError(t, client.Close())

	// Reopen the same file and load what was persisted.
	reopened := newTestClient(t, dbPath)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Content, got.Content)
	assert.Equal(t, rec.Embedding, got.Embedding)
	assert.Equal(t, rec.Importance, got.Importance)
	assert.Equal(t, rec.Context, got.Context)
	assert.Equal(t, rec.AccessCount, got.AccessCount)
	assert.Equal(t, rec.ConsolidatedFrom, got.ConsolidatedFrom)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt.UTC()))
	assert.True(t, rec.LastAccessedAt.Equal(got.LastAccessedAt.UTC()))
}

func TestUpdateStatsPersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memories.db")
	ctx := context.Background()

	client := newTestClient(t, dbPath)
	defer func() { _ = client.Close() }()

	rec := testRecord(1)
	require.NoError(t, client.Insert(ctx, rec))

	touched := time.Now().UTC().Truncate(time.Second).Add(time.Hour)
	require.NoError(t, client.UpdateStats(ctx, rec.ID, 0.95, 7, touched))

	records, err := client.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.95, records[0].Importance)
	assert.Equal(t, int64(7), records[0].AccessCount)
	assert.True(t, touched.Equal(records[0].LastAccessedAt.UTC()))
}

func TestDeleteRemovesRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memories.db")
	ctx := context.Background()

	client := newTestClient(t, dbPath)
	defer func() { _ = client.Close() }()

	require.NoError(t, client.Insert(ctx, testRecord(1)))
	require.NoError(t, client.Insert(ctx, testRecord(2)))

	require.NoError(t, client.Delete(ctx, []int64{1}))
	// Deleting an absent id is a no-op.
	require.NoError(t, client.Delete(ctx, []int64{99}))

	records, err := client.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].ID)
}

func TestReplaceSwapsRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memories.db")
	ctx := context.Background()

	client := newTestClient(t, dbPath)
	defer func() { _ = client.Close() }()

	require.NoError(t, client.Insert(ctx, testRecord(1)))
	require.NoError(t, client.Insert(ctx, testRecord(2)))

	merged := testRecord(3)
	merged.ConsolidatedFrom = []int64{1, 2}
	require.NoError(t, client.Replace(ctx, []int64{1, 2}, merged))

	records, err := client.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].ID)
	assert.Equal(t, []int64{1, 2}, records[0].ConsolidatedFrom)
}

func TestLoadEmptyDatabase(t *testing.T) {
	client := newTestClient(t, filepath.Join(t.TempDir(), "memories.db"))
	defer func() { _ = client.Close() }()

	records, err := client.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}
