package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/desertthunder/traxyt/internal/shared"
)

// SetHeaders replaces the captured browser headers sent with every search.
func (s *SearchService) SetHeaders(h *shared.CurlHeaders) {
	s.headers.Store(h)
}

// WatchHeaders reloads the captured headers whenever the cURL file at path is written or replaced,
// until ctx is done. A file that fails to parse leaves the previous headers in place.
//
// The parent directory is watched so editors that save by rename are picked up too.
func (s *SearchService) WatchHeaders(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				s.reloadHeaders(path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("header watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (s *SearchService) reloadHeaders(path string) {
	h, err := shared.ParseCurlFile(path)
	if err != nil {
		s.logger.Warn("keeping previous headers", "path", path, "error", err)
		return
	}
	s.SetHeaders(h)
	s.logger.Info("reloaded search headers", "path", path, "count", len(h.Headers))
}
