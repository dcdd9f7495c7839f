// Package watch re-runs a function when IDL inputs change.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls a function after .d.ts files below a set of directories
// change. Calls never overlap.
type Watcher struct {
	Debounce time.Duration
	Log      *zap.Logger

	// Match selects the paths that trigger a run. Default: *.d.ts.
	Match func(path string) bool

	fsw *fsnotify.Watcher
}

// New returns a Watcher on dirs.
func New(dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, errors.Wrapf(err, "watching %s", dir)
		}
	}
	return &Watcher{Debounce: DefaultDebounce, fsw: fsw}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run blocks until ctx is done, calling fn after each settled burst of
// matching events. Errors from fn are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	match := w.Match
	if match == nil {
		match = isIDL
	}

	var (
		mu      sync.Mutex
		timer   *time.Timer
		running sync.Mutex
	)
	fire := func() {
		running.Lock()
		defer running.Unlock()
		if ctx.Err() != nil {
			return
		}
		if err := fn(ctx); err != nil {
			log.Error("regeneration failed", zap.Error(err))
		}
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !match(event.Name) {
				continue
			}
			log.Debug("input changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.Debounce, fire)
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}

func isIDL(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".d.ts") && !strings.HasPrefix(base, ".")
}
