package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// source produces raw events for a set of directories.
type source interface {
	// Add starts observing dir, and every directory below it when
	// recursive is set. A missing directory is an error.
	Add(dir string, recursive bool) error
	Events() <-chan FileEvent
	Errors() <-chan error
	Close() error
	Kind() string
}

// fsnotifySource adapts fsnotify to source.
type fsnotifySource struct {
	fsw    *fsnotify.Watcher
	events chan FileEvent
	errors chan error
	stopCh chan struct{}
	once   sync.Once
}

func newFsnotifySource(buffer int) (*fsnotifySource, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	s := &fsnotifySource{
		fsw:    fsw,
		events: make(chan FileEvent, buffer),
		errors: make(chan error, 10),
		stopCh: make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// run converts fsnotify events until the underlying watcher closes.
func (s *fsnotifySource) run() {
	defer close(s.events)
	defer close(s.errors)

	for {
		select {
		case <-s.stopCh:
			return
		case event, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			fe, ok := convertEvent(event)
			if !ok {
				continue
			}
			select {
			case s.events <- fe:
			case <-s.stopCh:
				return
			}
		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			select {
			case s.errors <- err:
			default:
			}
		}
	}
}

// convertEvent maps an fsnotify event onto a FileEvent. Chmod-only events
// are dropped.
func convertEvent(event fsnotify.Event) (FileEvent, bool) {
	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return FileEvent{}, false
	}

	isDir := false
	if info, err := os.Stat(event.Name); err == nil {
		isDir = info.IsDir()
	}
	return FileEvent{
		Path:      filepath.Clean(event.Name),
		Operation: op,
		IsDir:     isDir,
		Timestamp: time.Now(),
	}, true
}

func (s *fsnotifySource) Add(dir string, recursive bool) error {
	if !recursive {
		return s.fsw.Add(dir)
	}
	if err := s.fsw.Add(dir); err != nil {
		return err
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't access
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		return s.fsw.Add(path)
	})
}

func (s *fsnotifySource) Events() <-chan FileEvent { return s.events }

func (s *fsnotifySource) Errors() <-chan error { return s.errors }

func (s *fsnotifySource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stopCh)
		err = s.fsw.Close()
	})
	return err
}

func (s *fsnotifySource) Kind() string { return "fsnotify" }
