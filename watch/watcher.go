// Package watch re-runs a callback when an ontology source file changes.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long changes are collected before a Change is
// emitted.
const DefaultDebounce = 500 * time.Millisecond

const changeBuffer = 16

// Change reports new content (or removal) of the watched file.
type Change struct {
	Path    string
	Hash    string
	Removed bool
}

// Watcher watches one file. It watches the file's directory so editors
// that replace the file by rename are followed.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   bool

	lastHash string
	changes  chan Change
	dropped  atomic.Int64
}

// New creates a watcher for path. A non-positive debounce uses
// DefaultDebounce.
func New(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		changes:  make(chan Change, changeBuffer),
	}, nil
}

// Changes returns the channel of debounced changes. It is closed when the
// watcher stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start records the current content hash and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	if hash, err := hashFile(w.path); err == nil {
		w.lastHash = hash
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	go w.processEvents(ctx)

	w.logger.Info("Ontology source watcher started",
		slog.String("path", w.path),
		slog.Duration("debounce", w.debounce))
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// DroppedChanges returns the number of changes dropped because the channel
// was full.
func (w *Watcher) DroppedChanges() int64 {
	return w.dropped.Load()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.pendingMu.Lock()
			w.pending = true
			w.pendingMu.Unlock()
			w.logger.Debug("Ontology source change detected",
				slog.String("path", w.path),
				slog.String("op", event.Op.String()))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if !w.pending {
		w.pendingMu.Unlock()
		return
	}
	w.pending = false
	w.pendingMu.Unlock()

	hash, err := hashFile(w.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if w.lastHash == "" {
			return
		}
		w.lastHash = ""
		w.send(Change{Path: w.path, Removed: true})
	case err != nil:
		w.logger.Warn("Failed to read ontology source",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
	case hash != w.lastHash:
		w.lastHash = hash
		w.send(Change{Path: w.path, Hash: hash})
	}
}

func (w *Watcher) send(c Change) {
	select {
	case w.changes <- c:
		w.logger.Debug("Sent source change", slog.String("path", c.Path), slog.Bool("removed", c.Removed))
	default:
		dropped := w.dropped.Add(1)
		w.logger.Warn("Change channel full, dropping change",
			slog.String("path", c.Path),
			slog.Int64("total_dropped", dropped))
	}
}

// Run calls fn for every change until ctx is done or the watcher stops.
// Errors from fn are logged and do not stop the loop.
func Run(ctx context.Context, w *Watcher, fn func(context.Context, Change) error) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-w.Changes():
			if !ok {
				return
			}
			if err := fn(ctx, c); err != nil {
				w.logger.Error("Rebuild after source change failed",
					slog.String("path", c.Path),
					slog.String("error", err.Error()))
			}
		}
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
