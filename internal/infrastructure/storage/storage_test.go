package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
)

type doc struct {
	Items []string `json:"items"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "data"), logging.NewNop())
	require.NoError(t, err)

	var missing doc
	found, err := store.Read(ctx, "widgets", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Write(ctx, "widgets", doc{Items: []string{"a", "b"}}))

	var got doc
	found, err = store.Read(ctx, "widgets", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got.Items)

	raw, err := os.ReadFile(store.Path("widgets"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"items\"")
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, logging.NewNop())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Write(ctx, "presets", doc{Items: []string{"x"}}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "presets.json", entries[0].Name())
}

func TestFileStoreMovesCorruptDocumentAside(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path("widgets"), []byte("{not json"), 0o644))

	var got doc
	found, err := store.Read(context.Background(), "widgets", &got)
	require.NoError(t, err)
	assert.False(t, found)

	aside, err := os.ReadFile(store.Path("widgets") + CorruptSuffix)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(aside))

	require.NoError(t, store.Write(context.Background(), "widgets", doc{Items: []string{"seed"}}))
	aside, err = os.ReadFile(store.Path("widgets") + CorruptSuffix)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(aside), "a later write must not touch the moved-aside copy")
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), logging.NewNop())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", `a\b`, ".hidden"} {
		err := store.Write(context.Background(), key, doc{})
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFileStoreHonorsCanceledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Write(ctx, "widgets", doc{}), context.Canceled)
}

func TestMemoryStoreFailureInjection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("disk full")

	require.NoError(t, store.Write(ctx, "widgets", doc{Items: []string{"first"}}))

	store.FailWrites(boom)
	assert.ErrorIs(t, store.Write(ctx, "widgets", doc{Items: []string{"second"}}), boom)

	var got doc
	found, err := store.Read(ctx, "widgets", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"first"}, got.Items)

	store.FailWrites(nil)
	require.NoError(t, store.Write(ctx, "widgets", doc{Items: []string{"third"}}))
	assert.Equal(t, 2, store.Writes())
}

func TestMemoryStoreFailWritesAfter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("disk full")

	store.FailWritesAfter(2, boom)
	assert.NoError(t, store.Write(ctx, "a", doc{}))
	assert.NoError(t, store.Write(ctx, "a", doc{}))
	assert.ErrorIs(t, store.Write(ctx, "a", doc{}), boom)
}
