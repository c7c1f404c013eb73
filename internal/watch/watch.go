// Package watch reloads a bagel into the dashboard whenever its file changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/procdash/internal/dashboard"
)

// DatasetID is the id of the dataset loaded from the watched file.
const DatasetID = "watched"

const defaultDebounce = 500 * time.Millisecond

// Reloader stores a parsed bagel under a fixed id.
type Reloader interface {
	Reload(ctx context.Context, id string, req dashboard.UploadRequest) (*dashboard.Dataset, error)
}

// Watcher reloads a file into a Reloader.
type Watcher struct {
	logger   *zap.Logger
	reloader Reloader
	path     string
	schema   string
	name     string
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce waits for d without new events before reloading, so that a file written in several steps is
// loaded once.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithName sets the name of the loaded dataset.
func WithName(name string) Option {
	return func(w *Watcher) {
		w.name = name
	}
}

// New creates a watcher of the bagel at path, parsed with the named schema.
func New(logger *zap.Logger, reloader Reloader, path, schema string, opts ...Option) *Watcher {
	w := &Watcher{
		logger:   logger,
		reloader: reloader,
		path:     filepath.Clean(path),
		schema:   schema,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Load parses the file and stores it under DatasetID.
func (w *Watcher) Load(ctx context.Context) error {
	file, err := os.Open(w.path)
	if err != nil {
		return errors.Wrap(err, "unable to open watched file")
	}
	defer file.Close()

	_, err = w.reloader.Reload(ctx, DatasetID, dashboard.UploadRequest{
		Filename: filepath.Base(w.path),
		Schema:   w.schema,
		Name:     w.name,
		Body:     file,
	})
	if err != nil {
		return errors.Wrapf(err, "unable to reload %s", w.path)
	}

	return nil
}

func (w *Watcher) reload(ctx context.Context) {
	err := w.Load(ctx)
	if err != nil {
		w.logger.Warn("unable to load watched file", zap.String("path", w.path), zap.Error(err))
	}
}

// Run loads the file, then reloads it on every change until ctx is done. The directory of the file is watched, so
// that files replaced by a rename are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "unable to create file watcher")
	}
	defer fsw.Close()

	err = fsw.Add(filepath.Dir(w.path))
	if err != nil {
		return errors.Wrapf(err, "unable to watch %s", filepath.Dir(w.path))
	}

	w.reload(ctx)
	w.logger.Info("watching bagel", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			w.logger.Debug("watched file changed", zap.String("path", w.path), zap.Stringer("op", event.Op))
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		case <-timer.C:
			w.reload(ctx)
		}
	}
}
