package tail

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"envwatch/internal/logging"
)

// Watcher signals writes to a single file. Signals coalesce: C holds at most
// one pending wake-up no matter how many events arrived.
type Watcher struct {
	watcher *fsnotify.Watcher
	name    string
	wake    chan struct{}
	done    chan struct{}
	logger  *slog.Logger
	once    sync.Once
}

// Watch observes the parent directory of path so creations and replacements
// of the file are seen as well as appends. The directory must exist.
func Watch(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher: fsw,
		name:    filepath.Clean(abs),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go w.loop()
	return w, nil
}

// C returns the wake-up channel.
func (w *Watcher) C() <-chan struct{} {
	return w.wake
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				select {
				case w.wake <- struct{}{}:
				default:
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "file watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "polling continues on the configured interval"),
				logging.String(logging.FieldImpact, "new lines may be picked up later than usual"),
			)
		}
	}
}
