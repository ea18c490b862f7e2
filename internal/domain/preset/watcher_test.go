package preset

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/infrastructure/storage"
)

func TestWatcherReloadsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(storage.NewMemoryStore(), logging.NewNop())
	require.NoError(t, store.Load(context.Background()))

	w, err := NewWatcher(store, dir, 20*time.Millisecond, logging.NewNop())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	writeFile(t, dir, "weather.yaml", yamlPreset)
	assert.Eventually(t, func() bool {
		_, ok := store.Get("weather")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	writeFile(t, dir, "weather.yaml", strings.Replace(yamlPreset, "Weather Watch", "Storm Watch", 1))
	assert.Eventually(t, func() bool {
		p, ok := store.Get("weather")
		return ok && p.DisplayName == "Storm Watch"
	}, 2*time.Second, 10*time.Millisecond)

	// Files that are not presets are ignored
	writeFile(t, dir, "notes.txt", "hello")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, store.Count())
}

func TestNewWatcherMissingDir(t *testing.T) {
	store := NewStore(storage.NewMemoryStore(), logging.NewNop())
	_, err := NewWatcher(store, "/nonexistent/presets", 0, logging.NewNop())
	assert.Error(t, err)
}
