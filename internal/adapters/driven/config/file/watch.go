package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/merkuze-health/merkuze/internal/logger"
)

// Watch reloads the store whenever a prompt file in its directory changes.
// The returned channel receives the name of each changed prompt and is closed
// when ctx is done.
func (s *PromptStore) Watch(ctx context.Context) (<-chan string, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return nil, fmt.Errorf("create prompt directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}

	changes := make(chan string, 8)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, changed := s.handleFsEvent(event)
				if !changed {
					continue
				}
				s.Reload()
				logger.Info("Prompt %q changed, reloaded", name)
				select {
				case changes <- name:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Prompt watcher: %v", err)
			}
		}
	}()

	return changes, nil
}

// handleFsEvent returns the prompt name affected by event. Hidden files,
// non-prompt files and permission changes are ignored.
func (s *PromptStore) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != ".txt" {
		return "", false
	}
	return strings.TrimSuffix(base, ".txt"), true
}
