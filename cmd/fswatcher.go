package cmd

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// fsWatcher reports changes below a set of directory trees once they
// have settled for the debounce interval.
type fsWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	// IsValidFile filters the paths that trigger Changed.
	IsValidFile func(string) bool
	Changed     func()
}

func newFSWatcher(debounce time.Duration) (*fsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsWatcher{watcher: w, debounce: debounce}, nil
}

// AddTree watches root and every directory below it.
func (w *fsWatcher) AddTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *fsWatcher) Close() error {
	return w.watcher.Close()
}

// Run delivers changes until ctx is done. Events caused while Changed
// runs, such as the optimizer rewriting files, are dropped.
func (w *fsWatcher) Run(ctx context.Context) error {
	var (
		timer      *time.Timer
		fire       <-chan time.Time
		quietUntil time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || time.Now().Before(quietUntil) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.AddTree(ev.Name); err != nil {
						log.Warningf("Cannot watch %s: %v", ev.Name, err)
					}
				}
			}
			if w.IsValidFile != nil && !w.IsValidFile(ev.Name) {
				continue
			}
			log.Debugf("Change detected: %s", ev)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			if w.Changed != nil {
				w.Changed()
			}
			quietUntil = time.Now().Add(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Error watching: %v", err)
		}
	}
}
