package media

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"Bt1Cut/logger"

	"github.com/fsnotify/fsnotify"
)

// Watcher auto-registers media files dropped into the configured watch
// folder. Files are registered for the owning user once the create event
// settles; duplicates are filtered both here and by source-ref lookup in
// the service.
type Watcher struct {
	service *Service
	userID  int64
	dir     string

	done chan struct{}
}

// NewWatcher creates a watch-folder importer. userID owns the imported
// assets; single-user deployments pass their only user.
func NewWatcher(service *Service, userID int64, dir string) *Watcher {
	return &Watcher{
		service: service,
		userID:  userID,
		dir:     dir,
		done:    make(chan struct{}),
	}
}

// settleDelay gives the copying process a moment to finish before probing.
const settleDelay = 500 * time.Millisecond

// Run watches until Stop is called. Errors are logged, never fatal: a
// broken importer must not take the editor down.
func (w *Watcher) Run() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("media watcher failed to start", logger.ErrorField(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		logger.Error("media watcher cannot watch directory",
			logger.String("dir", w.dir),
			logger.ErrorField(err),
		)
		return
	}
	logger.Info("media watch folder active", logger.String("dir", w.dir))

	seen := make(map[string]bool)
	for {
		select {
		case event := <-watcher.Events:
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !importable(event.Name) || seen[event.Name] {
				continue
			}
			if len(seen) >= seenLimit {
				seen = make(map[string]bool)
			}
			seen[event.Name] = true
			// register sleeps for the settle delay; it must not hold up
			// the event loop. The service dedupes by source ref.
			go w.register(event.Name)

		case err := <-watcher.Errors:
			logger.Warn("media watcher error", logger.ErrorField(err))

		case <-w.done:
			return
		}
	}
}

// seenLimit caps the dedupe map; past it the map resets and the service's
// source-ref lookup catches any repeats.
const seenLimit = 1024

// importable reports whether the path looks like a media file worth
// registering. Hidden files (in-progress copies from some tools) are skipped.
func importable(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	_, ok := mediaTypeForExt(path)
	return ok
}

// Stop terminates the watch loop.
func (w *Watcher) Stop() {
	close(w.done)
}

func (w *Watcher) register(path string) {
	time.Sleep(settleDelay)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	asset, err := w.service.Register(ctx, w.userID, path)
	if err != nil {
		logger.Warn("watch folder import failed",
			logger.String("path", path),
			logger.ErrorField(err),
		)
		return
	}
	logger.Info("watch folder import",
		logger.String("path", path),
		logger.String("assetId", asset.ID),
	)
}
