// Package filesystem discovers ingestible files in local folders and
// watches them for new or changed files.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// ErrNotDirectory is returned when the root path is not a directory.
var ErrNotDirectory = errors.New("filesystem: root is not a directory")

// Connector lists and watches the supported files under a root folder.
// Hidden files and directories are skipped.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a connector for rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Root returns the folder this connector reads.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("filesystem: %w", err)
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

// Files returns every supported file under the root, sorted by path.
func (c *Connector) Files(ctx context.Context) ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("filesystem: skipping %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.rootPath && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && domain.IsSupportedFormat(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Watch reports files created or written under the root, including in
// subdirectories created after the watch started. The channel closes when
// ctx is cancelled or Close is called.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filesystem: creating watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		watcher.Close() //nolint:errcheck
		return nil, err
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	changes := make(chan domain.FileChange)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				c.Close() //nolint:errcheck
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change := c.handleFsEvent(watcher, event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					c.Close() //nolint:errcheck
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("filesystem: watch error: %v", err)
			}
		}
	}()

	return changes, nil
}

// Close stops watching.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// addTree watches dir and every non-hidden directory below it.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("filesystem: watching %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent maps a raw event to a change, or nil when it is not worth
// ingesting. New directories are added to the watch.
func (c *Connector) handleFsEvent(watcher *fsnotify.Watcher, event fsnotify.Event) *domain.FileChange {
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return nil
	}

	var changeType domain.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		changeType = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		changeType = domain.ChangeUpdated
	default:
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		if changeType == domain.ChangeCreated && watcher != nil {
			if err := c.addTree(watcher, event.Name); err != nil {
				logger.Warn("%v", err)
			}
		}
		return nil
	}
	if !info.Mode().IsRegular() || !domain.IsSupportedFormat(name) {
		return nil
	}

	return &domain.FileChange{Type: changeType, Path: event.Name}
}

// isHidden reports whether a file or directory name is hidden or an
// editor/office lock file.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")
}
