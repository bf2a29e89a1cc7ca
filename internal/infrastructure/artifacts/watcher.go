package artifacts

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/tips/pkg/logger"
)

// Watcher reloads artifacts when either artifact file in a FileSource
// directory changes. Bursts of events inside the debounce window produce one reload.
// Watcher 监听工件目录，文件变更后在防抖窗口结束时触发一次重新加载。
type Watcher struct {
	loader   *Loader
	dir      string
	names    map[string]bool
	debounce time.Duration
	logger   logger.Logger

	fsw    *fsnotify.Watcher
	mu     sync.Mutex
	timer  *time.Timer
	done   chan struct{}
	closed sync.Once

	// reloaded is signalled after every reload attempt; used by tests.
	reloaded chan error
}

// NewWatcher watches the directory of source for changes to the loader's artifacts.
func NewWatcher(loader *Loader, source *FileSource, debounce time.Duration, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(source.Dir()); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", source.Dir(), err)
	}
	opts := loader.Options()
	return &Watcher{
		loader:   loader,
		dir:      source.Dir(),
		names:    map[string]bool{opts.TransformName: true, opts.ModelName: true},
		debounce: debounce,
		logger:   log.WithComponent("artifact-watcher"),
		fsw:      fsw,
		done:     make(chan struct{}),
		reloaded: make(chan error, 16),
	}, nil
}

// Run processes file events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info(ctx, "Watching artifact directory", logger.String("dir", w.dir))
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.names[filepath.Base(ev.Name)] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug(ctx, "Artifact file changed",
				logger.String("file", ev.Name),
				logger.String("op", ev.Op.String()),
			)
			w.schedule(ctx)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "File watcher error", logger.String("error", err.Error()))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		_, err := w.loader.Reload(context.WithoutCancel(ctx))
		select {
		case w.reloaded <- err:
		default:
		}
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.closed.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fsw.Close()
	})
	return err
}
