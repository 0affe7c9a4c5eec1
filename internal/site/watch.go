package site

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rodriguezjordyc/website/internal/logger"
)

// Watcher calls OnChange once the watched files settle after a change
type Watcher struct {
	// Files are watched through their parent directory; other files in
	// that directory are ignored.
	Files []string
	// Dirs are watched recursively
	Dirs     []string
	Debounce time.Duration
	OnChange func()
}

// Run blocks until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]bool, len(w.Files))
	for _, f := range w.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		files[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			logger.Warn("Not watching content file", map[string]interface{}{
				"path":  f,
				"error": err.Error(),
			})
		}
	}

	dirs := make([]string, 0, len(w.Dirs))
	for _, d := range w.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return err
		}
		dirs = append(dirs, abs)
		addTree(watcher, abs)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name, _ := filepath.Abs(event.Name)
			if !files[name] && !within(name, dirs) {
				continue
			}
			if event.Has(fsnotify.Create) && isDir(name) {
				addTree(watcher, name)
			}

			logger.Debug("Change detected", map[string]interface{}{
				"path": event.Name,
				"op":   event.Op.String(),
			})

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.Debounce, w.OnChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error", err)
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				logger.Warn("Failed to watch directory", map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				})
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("Not watching directory", map[string]interface{}{
			"path":  root,
			"error": err.Error(),
		})
	}
}

func within(path string, dirs []string) bool {
	for _, d := range dirs {
		if rel, err := filepath.Rel(d, path); err == nil && rel != ".." && !startsWithParent(rel) {
			return true
		}
	}
	return false
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
