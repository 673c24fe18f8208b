package blogcatalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eringen/blogcatalog/logfields"
)

// Invalidator is anything holding derived content that must be dropped
// when the source tree changes.
type Invalidator interface {
	Invalidate()
}

// ContentWatcher invalidates a cache when files under the content root
// change. Bursts of events are collapsed into one invalidation.
type ContentWatcher struct {
	root         string
	target       Invalidator
	watcher      *fsnotify.Watcher
	debounce     time.Duration
	logger       *slog.Logger
	reloadChan   chan struct{}
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	onInvalidate func()
}

// NewContentWatcher creates a watcher for the content tree at root.
func NewContentWatcher(root string, target Invalidator, debounce time.Duration, logger *slog.Logger) (*ContentWatcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &ContentWatcher{
		root:       abs,
		target:     target,
		watcher:    w,
		debounce:   debounce,
		logger:     logger.With(logfields.Component("watcher")),
		reloadChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}, nil
}

// Start watches the root and every slug directory below it. fsnotify is
// not recursive, so new slug directories are added as they appear.
func (cw *ContentWatcher) Start(ctx context.Context) error {
	if err := cw.watcher.Add(cw.root); err != nil {
		return fmt.Errorf("watch %s: %w", cw.root, err)
	}
	entries, err := os.ReadDir(cw.root)
	if err != nil {
		return fmt.Errorf("read content root: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && !skipDirName(e.Name()) {
			cw.addDir(filepath.Join(cw.root, e.Name()))
		}
	}
	cw.logger.Info("Watching content", logfields.Path(cw.root))

	cw.wg.Add(2)
	go cw.watchLoop(ctx)
	go cw.reloadLoop(ctx)
	return nil
}

// Stop ends both loops and closes the underlying watcher.
func (cw *ContentWatcher) Stop() error {
	var err error
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		err = cw.watcher.Close()
		cw.wg.Wait()
	})
	return err
}

func (cw *ContentWatcher) addDir(dir string) {
	if err := cw.watcher.Add(dir); err != nil {
		cw.logger.Warn("Cannot watch directory", logfields.Path(dir), logfields.Error(err))
	}
}

func (cw *ContentWatcher) watchLoop(ctx context.Context) {
	defer cw.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op.Has(fsnotify.Create) && filepath.Dir(event.Name) == cw.root {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() && !skipDirName(fi.Name()) {
					cw.addDir(event.Name)
				}
			}
			cw.logger.Debug("Content change", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			cw.trigger()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("Content watcher error", logfields.Error(err))
		}
	}
}

func (cw *ContentWatcher) reloadLoop(ctx context.Context) {
	defer cw.wg.Done()
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-cw.stopChan:
			stop()
			return
		case <-cw.reloadChan:
			stop()
			timer = time.AfterFunc(cw.debounce, cw.invalidate)
		}
	}
}

func (cw *ContentWatcher) trigger() {
	select {
	case cw.reloadChan <- struct{}{}:
	default:
	}
}

func (cw *ContentWatcher) invalidate() {
	cw.logger.Info("Content changed, invalidating catalogs")
	cw.target.Invalidate()
	if cw.onInvalidate != nil {
		cw.onInvalidate()
	}
}

// skipDirName reports whether a top-level directory is ignored by the
// content store.
func skipDirName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
