package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"rpg-bot/model"
)

const reloadDebounce = 250 * time.Millisecond

// FileStore serves a JSON or YAML command book from disk. The format is
// picked from the file extension. Watch keeps the book in sync with the file.
type FileStore struct {
	path   string
	format string
	log    *zap.Logger

	mu   sync.RWMutex
	book model.CommandBook

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFileStore reads the file once. A missing file is ErrNotFound.
func NewFileStore(path string, log *zap.Logger) (*FileStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &FileStore{
		path:   path,
		format: formatFromPath(path),
		log:    log.Named("file_store"),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Commands(context.Context) (model.CommandBook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book, nil
}

// Reload re-reads the file. On error the previous book stays in place.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return fmt.Errorf("read command file %s: %w", s.path, err)
	}
	book, err := model.DecodeCommandBook(data, s.format)
	if err != nil {
		return fmt.Errorf("parse command file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.book = book
	s.mu.Unlock()
	s.log.Info("command book loaded",
		zap.String("path", s.path),
		zap.Int("commands", len(book)))
	return nil
}

// Watch reloads the book whenever the file changes and passes every
// successfully loaded book to onChange. The parent directory is watched so
// editors that replace the file by rename are seen too.
func (s *FileStore) Watch(onChange func(model.CommandBook)) error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	s.watcher = watcher
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(watcher, onChange)
	return nil
}

func (s *FileStore) run(watcher *fsnotify.Watcher, onChange func(model.CommandBook)) {
	defer close(s.doneCh)

	target := filepath.Clean(s.path)
	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-s.stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			fire = debounce.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("command file watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := s.Reload(); err != nil {
				s.log.Warn("command file reload failed, keeping previous book", zap.Error(err))
				continue
			}
			if onChange != nil {
				book, _ := s.Commands(context.Background())
				onChange(book)
			}
		}
	}
}

// Close stops the watcher if one is running.
func (s *FileStore) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watcher == nil {
		return nil
	}
	close(s.stopCh)
	<-s.doneCh
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
