package preset

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reloads preset files as they change on disk. Unlike the startup
// seed, a changed file overwrites the stored preset of the same name.
type Watcher struct {
	watcher  *fsnotify.Watcher
	store    *Store
	dir      string
	debounce time.Duration
	logger   *logging.Logger

	mu      sync.Mutex
	pending map[string]struct{} // Protected by mu
}

// NewWatcher starts watching dir. Rapid changes to the same file within
// debounce are applied once.
func NewWatcher(store *Store, dir string, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		watcher:  fw,
		store:    store,
		dir:      dir,
		debounce: debounce,
		logger:   logger.Named("preset-watcher"),
		pending:  make(map[string]struct{}),
	}, nil
}

// Run processes file events until ctx is cancelled or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("Watching presets directory", zap.String("dir", w.dir))
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || decoderFor(event.Name) == nil {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = struct{}{}
			w.mu.Unlock()
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Preset watcher error", zap.Error(err))
		case <-timer.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()
	sort.Strings(paths)

	for _, path := range paths {
		req, err := LoadFile(path)
		if err != nil {
			w.logger.Warn("Failed to reload preset file", zap.String("file", filepath.Base(path)), zap.Error(err))
			continue
		}
		if _, err := w.store.Save(ctx, req); err != nil {
			w.logger.Warn("Failed to save reloaded preset", zap.String("file", filepath.Base(path)), zap.Error(err))
			continue
		}
		w.logger.Info("Preset reloaded from disk",
			zap.String("preset", req.Name),
			zap.String("file", filepath.Base(path)),
		)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
