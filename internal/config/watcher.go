package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/diligent-ai/diligent/internal/logging"
)

// Watcher reloads configuration when the config file changes on disk.
// Serve mode uses it so log level and backend tuning apply without a
// restart; structural changes (ports, store path) still need one.
type Watcher struct {
	path     string
	onChange func(*Config)
	logger   *logging.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(path string, onChange func(*Config), logger *logging.Logger) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		logger:   logger,
		debounce: 250 * time.Millisecond,
	}
}

// Run watches until the context is cancelled. Editors replace files
// rather than writing in place, so the parent directory is watched and
// events are filtered to the config path.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce bursts: editors emit several events per save.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-fire:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := NewLoader().WithConfigFile(w.path).Load()
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous config", "error", err)
		return
	}
	if err := NewValidator().Validate(cfg); err != nil {
		w.logger.Warn("config reload rejected by validation", "error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)
	w.onChange(cfg)
}
