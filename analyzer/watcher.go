package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures incremental re-analysis of a source tree.
type WatcherConfig struct {
	// Root is the directory to watch recursively.
	Root string

	// DebounceDelay is how long to wait for further changes before
	// re-analyzing. Defaults to 100ms.
	DebounceDelay time.Duration

	// Analyzer runs the pipeline on changed files.
	Analyzer *Analyzer

	// Logger for watch events. Defaults to slog.Default().
	Logger *slog.Logger
}

// WatchOperation indicates the type of file change.
type WatchOperation string

const (
	OpCreate WatchOperation = "create"
	OpModify WatchOperation = "modify"
	OpDelete WatchOperation = "delete"
)

// WatchEvent reports one processed file change. Result is nil for deletes
// and for files that failed to analyze.
type WatchEvent struct {
	Path      string
	Operation WatchOperation
	Result    *FileResult
	Error     error
}

// Watcher re-analyzes Elixir files as they change. Events are debounced so
// editor save bursts produce a single re-analysis, and unchanged content
// (same hash) is dropped silently.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.RWMutex
	hashes map[string]string

	events chan WatchEvent
}

// NewWatcher creates a watcher. Call Start to begin receiving events.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		events:  make(chan WatchEvent, 100),
	}, nil
}

// Events returns the channel of processed changes.
func (w *Watcher) Events() <-chan WatchEvent {
	return w.events
}

// Start adds recursive watches and begins processing in the background.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("file watcher started",
		"root", w.config.Root,
		"debounce", w.config.DebounceDelay)
	return nil
}

// Stop closes the watcher and the event channel.
func (w *Watcher) Stop() error {
	close(w.events)
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if base == "deps" || base == "_build" || strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !isElixirFile(path) {
		// New directories need their own watch.
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				base := filepath.Base(path)
				if base != "deps" && base != "_build" && !strings.HasPrefix(base, ".") {
					if err := w.watcher.Add(path); err != nil {
						w.logger.Warn("failed to watch new directory", "path", path, "error", err)
					}
				}
			}
		}
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		relPath, err := filepath.Rel(w.config.Root, path)
		if err != nil {
			relPath = path
		}
		event := WatchEvent{Path: relPath}

		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			event.Operation = OpDelete
			w.forgetHash(relPath)
			w.sendEvent(event)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				event.Operation = OpDelete
				w.forgetHash(relPath)
			} else {
				event.Error = err
			}
			w.sendEvent(event)
			continue
		}

		hash := contentHash(content)
		oldHash, hadHash := w.getHash(relPath)
		if hadHash && oldHash == hash {
			continue
		}
		w.setHash(relPath, hash)

		if op.Has(fsnotify.Create) || !hadHash {
			event.Operation = OpCreate
		} else {
			event.Operation = OpModify
		}

		result, err := w.config.Analyzer.AnalyzeSource(ctx, relPath, content)
		if err != nil {
			event.Error = err
		} else {
			event.Result = &result
		}
		w.sendEvent(event)
	}
}

func (w *Watcher) sendEvent(event WatchEvent) {
	select {
	case w.events <- event:
	default:
		w.logger.Warn("event channel full, dropping event", "path", event.Path)
	}
}

func (w *Watcher) getHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	h, ok := w.hashes[path]
	return h, ok
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) forgetHash(path string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	delete(w.hashes, path)
}

func isElixirFile(path string) bool {
	return strings.HasSuffix(path, ".ex") || strings.HasSuffix(path, ".exs")
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
