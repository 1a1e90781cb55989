package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the config file watcher
type WatcherConfig struct {
	// Path is the config file to watch
	Path string

	// DebounceDelay is how long to wait for more writes before reloading
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// Watcher watches a config file and reloads it on change. Editors often
// write via rename, so the watch covers the parent directory and events
// are filtered to the config file name.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: coalesce a burst of writes into one reload
	pendingMu sync.Mutex
	pending   bool

	// Output channel of successfully reloaded configs. Only the event
	// loop sends on it and only the event loop closes it, so Stop can
	// never race a reload into a closed channel.
	updates chan *Config

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a new config file watcher
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = 200 * time.Millisecond
	}

	return &Watcher{
		config:  cfg,
		watcher: fsw,
		logger:  logger,
		updates: make(chan *Config, 1),
		done:    make(chan struct{}),
	}, nil
}

// Updates returns the channel of reloaded configs
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Start begins watching the config file for changes
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Config watcher started",
		"path", w.config.Path,
		"debounce", w.config.DebounceDelay)

	return nil
}

// Stop stops the watcher. The event loop closes the updates channel on
// its way out.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.done) })
	return w.watcher.Close()
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.updates)

	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.done:
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
			w.logger.Error("Config watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent processes a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()
}

// flushPending reloads the config if a change is pending
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = false
	w.pendingMu.Unlock()

	if !pending {
		return
	}

	cfg, err := LoadFromFile(w.config.Path)
	if err != nil {
		w.logger.Error("Config reload failed",
			"path", w.config.Path,
			"error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Error("Reloaded config is invalid, keeping previous",
			"path", w.config.Path,
			"error", err)
		return
	}

	w.logger.Info("Config reloaded", "path", w.config.Path)

	// Drop a stale update rather than block the event loop
	select {
	case w.updates <- cfg:
	default:
		select {
		case <-w.updates:
		default:
		}
		w.updates <- cfg
	}
}
