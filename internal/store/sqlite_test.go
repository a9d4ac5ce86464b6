package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalnoise/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err, "NewSQLiteStore should succeed")
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_LoadAllEmpty(t *testing.T) {
	t.Parallel()

	store := newTestSQLiteStore(t)

	got, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got.Signal)
	assert.NotNil(t, got.Noise)
	assert.Zero(t, got.Len())
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestSQLiteStore(t)
	ctx := context.Background()

	signal := []models.Task{
		{ID: "a", Text: "Ship release", Order: 0},
		{ID: "b", Text: "Review PR", Completed: true, Order: 1},
	}
	noise := []models.Task{
		{ID: "c", Text: "Inbox zero", Ignored: true, Order: 0},
	}

	require.NoError(t, store.SaveAll(ctx, signal, noise))

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)

	want := models.Snapshot{Signal: signal, Noise: noise}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_SaveOverwrites(t *testing.T) {
	t.Parallel()

	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAll(ctx, []models.Task{{ID: "a", Text: "old"}}, nil))
	require.NoError(t, store.SaveAll(ctx, nil, []models.Task{{ID: "b", Text: "new"}}))

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)

	want := models.Snapshot{Signal: []models.Task{}, Noise: []models.Task{{ID: "b", Text: "new"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_EraseAll(t *testing.T) {
	t.Parallel()

	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAll(ctx, []models.Task{{ID: "a", Text: "task"}}, nil))
	require.NoError(t, store.EraseAll(ctx))

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.Len())

	assert.NoError(t, store.EraseAll(ctx), "erasing twice is not an error")
}

func TestSQLiteStore_CorruptDocumentLoadsEmpty(t *testing.T) {
	t.Parallel()

	store := newTestSQLiteStore(t)

	_, err := store.db.Exec(`INSERT INTO snapshots (id, document) VALUES (1, 'not json')`)
	require.NoError(t, err)

	got, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestSQLiteStore_DoneContext(t *testing.T) {
	t.Parallel()

	store := newTestSQLiteStore(t)
	require.NoError(t, store.SaveAll(context.Background(), []models.Task{{ID: "a", Text: "kept"}}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.LoadAll(ctx)
	require.ErrorIs(t, err, context.Canceled, "a cancelled load must not look like an empty store")

	require.ErrorIs(t, store.SaveAll(ctx, nil, nil), context.Canceled)
	require.ErrorIs(t, store.EraseAll(ctx), context.Canceled)

	got, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Signal[0].Text, "a cancelled write must leave the row alone")
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.SaveAll(ctx, []models.Task{{ID: "a", Text: "kept"}}, nil))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	got, err := second.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got.Signal, 1)
	assert.Equal(t, "kept", got.Signal[0].Text)
}
