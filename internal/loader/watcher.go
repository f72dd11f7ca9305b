package loader

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher grows a scope's classpath as jars appear in watched directories.
type Watcher struct {
	scope   *Scope
	watcher *fsnotify.Watcher
	logger  *log.Logger

	mu      sync.Mutex
	onAdded []func(string)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher feeding scope.
func NewWatcher(scope *Scope, logger *log.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[classpath-watcher] ", log.LstdFlags|log.Lmsgprefix)
	}
	return &Watcher{scope: scope, watcher: w, logger: logger}, nil
}

// Watch adds dir to the watched set.
func (w *Watcher) Watch(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Printf("watching %s for new jars", dir)
	return nil
}

// WatchScopeDirs watches every directory entry of the scope, plus the
// directories of wildcard-expanded jars listed in dirs.
func (w *Watcher) WatchScopeDirs(dirs []string) error {
	seen := make(map[string]bool)
	candidates := append(w.scope.Entries(), dirs...)
	for _, e := range candidates {
		info, err := os.Stat(e)
		if err != nil || !info.IsDir() || seen[e] {
			continue
		}
		seen[e] = true
		if err := w.Watch(e); err != nil {
			return err
		}
	}
	return nil
}

// OnAdded registers a callback invoked with each entry added to the scope.
func (w *Watcher) OnAdded(fn func(entry string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onAdded = append(w.onAdded, fn)
}

// Start runs the event loop until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop()
	}()
}

// Stop shuts the watcher down and waits for the loop to exit.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".jar") {
				continue
			}
			if _, err := os.Stat(event.Name); err != nil {
				// Rename away from the watched dir.
				continue
			}
			if w.scope.AddEntry(event.Name) {
				w.logger.Printf("added %s to classpath", event.Name)
				w.notify(filepath.Clean(event.Name))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) notify(entry string) {
	w.mu.Lock()
	callbacks := make([]func(string), len(w.onAdded))
	copy(callbacks, w.onAdded)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(entry)
	}
}
