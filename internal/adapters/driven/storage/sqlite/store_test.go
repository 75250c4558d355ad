package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testRun(id string, started time.Time) domain.SyncRun {
	return domain.SyncRun{
		ID:         id,
		Kind:       domain.SyncKindGraph,
		GraphID:    "G",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Upserts:    3,
		Deletes:    1,
	}
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "runs.db"), store.Path())
	assert.FileExists(t, store.Path())

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SyncRunStore().Save(ctx, testRun("r1", started)))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	run, err := reopened.SyncRunStore().Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", run.ID)

	version, err := reopened.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestSyncRunStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	runs := store.SyncRunStore()
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 12, 0, 0, 123000000, time.UTC)

	want := testRun("r1", started)
	want.IndexErrors = 2
	want.Error = "graph G: source unavailable"
	require.NoError(t, runs.Save(ctx, want))

	got, err := runs.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.GraphID, got.GraphID)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.True(t, want.FinishedAt.Equal(got.FinishedAt))
	assert.Equal(t, 3, got.Upserts)
	assert.Equal(t, 1, got.Deletes)
	assert.Equal(t, 2, got.IndexErrors)
	assert.Equal(t, want.Error, got.Error)
	assert.Equal(t, 1500*time.Millisecond, got.Duration())
}

func TestSyncRunStore_SaveUpdates(t *testing.T) {
	store := setupTestStore(t)
	runs := store.SyncRunStore()
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	running := domain.SyncRun{ID: "r1", Kind: domain.SyncKindFull, StartedAt: started}
	require.NoError(t, runs.Save(ctx, running))

	got, err := runs.Get(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, got.FinishedAt.IsZero())

	running.FinishedAt = started.Add(time.Minute)
	running.Upserts = 40
	require.NoError(t, runs.Save(ctx, running))

	got, err = runs.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 40, got.Upserts)
	assert.Equal(t, time.Minute, got.Duration())
}

func TestSyncRunStore_Errors(t *testing.T) {
	store := setupTestStore(t)
	runs := store.SyncRunStore()
	ctx := context.Background()

	_, err := runs.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = runs.Save(ctx, domain.SyncRun{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSyncRunStore_List(t *testing.T) {
	store := setupTestStore(t)
	runs := store.SyncRunStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, runs.Save(ctx, testRun(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Second))))
	}
	// Same start time as r4, larger id sorts first.
	require.NoError(t, runs.Save(ctx, testRun("r9", base.Add(4*time.Second))))

	all, err := runs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "r9", all[0].ID)
	assert.Equal(t, "r4", all[1].ID)
	assert.Equal(t, "r0", all[5].ID)

	recent, err := runs.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r9", recent[0].ID)
	assert.Equal(t, "r4", recent[1].ID)
}

func TestSyncRunStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t)

	runs, err := store.SyncRunStore().List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
