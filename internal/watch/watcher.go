package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrClosed is returned by Run when the underlying notifier shuts down
var ErrClosed = errors.New("watcher closed")

// relevantOps are the operations that may change the watched file's content
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watcher delivers debounced modification notifications for one file
type Watcher struct {
	path   string
	dir    string
	settle time.Duration
	log    *zap.SugaredLogger

	notifier *fsnotify.Watcher
}

// New starts watching path. Events are buffered from this point on, so a
// write that happens before Run is called is still delivered.
func New(path string, settle time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(abs)
	if err := notifier.Add(dir); err != nil {
		notifier.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		path:     abs,
		dir:      dir,
		settle:   settle,
		log:      log,
		notifier: notifier,
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks, calling onChange once per burst of modification events.
// It returns ctx.Err() when the context is cancelled, or ErrClosed if the
// notifier stops. Notifier errors are logged and do not end the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context)) error {
	var timer *time.Timer
	var fire <-chan time.Time

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.notifier.Events:
			if !ok {
				return ErrClosed
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("file event", "op", event.Op.String(), "name", event.Name)

			// Restart the settle delay on every event in a burst
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.settle)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(ctx)

		case err, ok := <-w.notifier.Errors:
			if !ok {
				return ErrClosed
			}
			w.log.Warnw("watcher error", "error", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.notifier.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&relevantOps == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.path
}
