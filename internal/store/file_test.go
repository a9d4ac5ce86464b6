package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalnoise/internal/models"
)

func mustLoad(t *testing.T, s Store) models.Snapshot {
	t.Helper()

	snapshot, err := s.LoadAll(context.Background())
	require.NoError(t, err, "LoadAll should succeed")

	return snapshot
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "data", "tasks_data.json"))
	require.NoError(t, err, "NewFileStore should succeed")

	return store
}

func TestFileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()

	signal := []models.Task{
		{ID: "b", Text: "second", Order: 0},
		{ID: "a", Text: "first", Completed: true, Order: 1},
	}
	noise := []models.Task{
		{ID: "c", Text: "noise", Ignored: true, Order: 0},
	}

	require.NoError(t, store.SaveAll(ctx, signal, noise))

	want := models.Snapshot{Signal: signal, Noise: noise}
	got := mustLoad(t, store)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_WritesIndentedDocument(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)

	require.NoError(t, store.SaveAll(context.Background(), []models.Task{{ID: "a", Text: "x"}}, nil))

	data, err := os.ReadFile(store.Location())
	require.NoError(t, err)

	want := `{
  "signal": [
    {
      "id": "a",
      "text": "x",
      "completed": false,
      "ignored": false,
      "order": 0
    }
  ],
  "noise": []
}
`
	assert.Equal(t, want, string(data))

	info, err := os.Stat(store.Location())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerms), info.Mode().Perm())
}

func TestFileStore_LoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	got := mustLoad(t, newTestFileStore(t))

	assert.NotNil(t, got.Signal)
	assert.NotNil(t, got.Noise)
	assert.Zero(t, got.Len())
}

func TestFileStore_LoadCorruptFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	require.NoError(t, os.WriteFile(store.Location(), []byte(`{"signal": [`), 0o644))

	assert.Zero(t, mustLoad(t, store).Len())
}

func TestFileStore_LoadFillsDefaultsForOlderRecords(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	legacy := `{
  // written before ignore and ordering existed
  "signal": [{"id": "a", "text": "old task", "completed": true},],
  "noise": [{"id": "b", "text": "older task"}]
}`
	require.NoError(t, os.WriteFile(store.Location(), []byte(legacy), 0o644))

	want := models.Snapshot{
		Signal: []models.Task{{ID: "a", Text: "old task", Completed: true}},
		Noise:  []models.Task{{ID: "b", Text: "older task"}},
	}

	if diff := cmp.Diff(want, mustLoad(t, store)); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStore_EraseAll(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAll(ctx, []models.Task{{ID: "a", Text: "x"}}, nil))
	require.NoError(t, store.EraseAll(ctx))

	_, err := os.Stat(store.Location())
	require.ErrorIs(t, err, os.ErrNotExist, "data file should be removed")

	require.NoError(t, store.EraseAll(ctx), "erasing an absent file should succeed")
	assert.Zero(t, mustLoad(t, store).Len())
}

func TestFileStore_SaveFailureIsReturned(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A directory in place of the data file makes the rename fail.
	path := filepath.Join(dir, "tasks_data.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o755))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	err = store.SaveAll(context.Background(), []models.Task{{ID: "a", Text: "x"}}, nil)
	require.Error(t, err)
}

func TestFileStore_DoneContext(t *testing.T) {
	t.Parallel()

	store := newTestFileStore(t)
	require.NoError(t, store.SaveAll(context.Background(), []models.Task{{ID: "a", Text: "kept"}}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.LoadAll(ctx)
	require.ErrorIs(t, err, context.Canceled, "a cancelled load must not look like an empty store")

	require.ErrorIs(t, store.SaveAll(ctx, nil, nil), context.Canceled)
	require.ErrorIs(t, store.EraseAll(ctx), context.Canceled)

	got := mustLoad(t, store)
	require.Len(t, got.Signal, 1)
	assert.Equal(t, "kept", got.Signal[0].Text, "a cancelled write must leave the file alone")
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewFileStore("")
	require.Error(t, err)
}
