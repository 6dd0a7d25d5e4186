package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// fileWatcher reports writes to one file. The parent directory is watched so
// that editors replacing the file by rename are seen too.
type fileWatcher struct {
	w      *fsnotify.Watcher
	target string
	log    logrus.FieldLogger
}

func watchFile(path string, log logrus.FieldLogger) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	return &fileWatcher{w: w, target: abs, log: log}, nil
}

// run calls fn after every change to the file until ctx is done. Errors from
// fn are logged and do not stop the loop.
func (fw *fileWatcher) run(ctx context.Context, fn func() error) error {
	defer fw.w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != fw.target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fw.log.WithField("file", ev.Name).Debug("change detected")
			if err := fn(); err != nil {
				fw.log.WithError(err).Error("rebuild failed")
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.log.WithError(err).Warn("watch error")
		}
	}
}
