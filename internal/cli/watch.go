package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

// watchDebounce groups the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// watchScripts calls rerun for a script each time its file is written,
// until ctx is done. Parent directories are watched rather than the files
// so editors that save by rename keep triggering.
func watchScripts(ctx context.Context, cc *CommandContext, paths []string, rerun func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	targets, err := watchTargets(paths)
	if err != nil {
		return err
	}
	dirs := make(map[string]bool)
	for abs := range targets {
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	if !cc.Quiet {
		ui.PrintInfo(fmt.Sprintf("Watching %s (Ctrl+C to stop)", strings.Join(paths, ", ")))
	}

	pending := make(map[string]bool)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			path, ok := targets[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			pending[path] = true
			fire = time.After(watchDebounce)
		case <-fire:
			fire = nil
			for _, path := range sortedKeys(pending) {
				rerun(path)
			}
			clear(pending)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watch error", "err", err)
		}
	}
}

// watchTargets maps each script's absolute path to the path as given.
func watchTargets(paths []string) (map[string]string, error) {
	targets := make(map[string]string, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		targets[abs] = path
	}
	return targets, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
