package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/TFMV/communitygraph/models"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before re-reading the dataset
const DefaultDebounce = 100 * time.Millisecond

// Watcher re-ingests a dataset file whenever it changes on disk
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*models.Graph)
	onError  func(error)
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher watches the directory holding path. Editors often replace a
// file rather than write it in place, so the directory is watched and
// events are filtered by name.
func NewWatcher(path string, debounce time.Duration, onChange func(*models.Graph), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("error watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// OnError registers a callback for datasets that fail to load. Call it
// before Run.
func (w *Watcher) OnError(fn func(error)) {
	w.onError = fn
}

// Run delivers reloaded graphs until ctx is done. A dataset that fails to
// load is logged and skipped; the caller keeps its previous graph.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debounce := time.NewTimer(w.debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending = true
			debounce.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			w.reload()
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	graph, err := ProcessFile(w.path)
	if err != nil {
		w.logger.Error("dataset reload failed", "path", w.path, "error", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.logger.Info("dataset reloaded", "path", w.path, "nodes", len(graph.Nodes), "edges", len(graph.Edges))
	w.onChange(graph)
}
