// Package watch reruns a merge whenever the artifacts directory changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NilFoundation/diamond/diamond/common/logging"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

type Config struct {
	Dir      string
	Debounce time.Duration
	// Ignore lists files and directories whose changes never trigger a rebuild, such as
	// the merge outputs. An entry naming Dir itself is dropped.
	Ignore []string
}

// RebuildFunc must read a fresh snapshot of the artifacts on every call.
type RebuildFunc func(ctx context.Context) error

type watcher struct {
	dir    string
	ignore map[string]struct{}
	fs     *fsnotify.Watcher
	logger logging.Logger
}

// Run watches cfg.Dir and all of its subdirectories until ctx is done. Bursts of
// events are coalesced into one rebuild after cfg.Debounce of quiet. A failing rebuild
// is logged and watching continues.
func Run(ctx context.Context, cfg Config, rebuild RebuildFunc, logger logging.Logger) error {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	w := &watcher{
		dir:    dir,
		ignore: make(map[string]struct{}, len(cfg.Ignore)),
		fs:     fsw,
		logger: logger,
	}
	for _, path := range cfg.Ignore {
		if abs, err := filepath.Abs(path); err == nil && abs != dir {
			w.ignore[abs] = struct{}{}
		}
	}
	if err := w.addTree(dir); err != nil {
		return err
	}

	timer := time.NewTimer(cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	logger.Info().Str(logging.FieldPath, dir).Msg("Watching for artifact changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				logger.Trace().Str(logging.FieldPath, event.Name).Str(logging.FieldEvent, event.Op.String()).Msg("Change detected")
				timer.Reset(cfg.Debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")
		case <-timer.C:
			start := time.Now()
			if err := rebuild(ctx); err != nil {
				logger.Error().Err(err).Msg("Rebuild failed")
				continue
			}
			logger.Debug().Dur(logging.FieldDuration, time.Since(start)).Msg("Rebuild finished")
		}
	}
}

func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (w.hidden(path) || w.ignored(path)) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *watcher) hidden(path string) bool {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}

// ignored reports whether path is an ignored entry or lies below one.
func (w *watcher) ignored(path string) bool {
	for p := path; ; {
		if _, ok := w.ignore[p]; ok {
			return true
		}
		parent := filepath.Dir(p)
		if parent == p || len(parent) < len(w.dir) {
			return false
		}
		p = parent
	}
}

func (w *watcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if w.ignored(event.Name) {
		return false
	}
	if w.hidden(event.Name) || strings.HasSuffix(event.Name, ".dbg.json") {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn().Err(err).Str(logging.FieldPath, event.Name).Msg("Failed to watch new directory")
			}
		}
	}
	return true
}
