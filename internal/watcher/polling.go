package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PollingWatcher watches directories for changes by periodically scanning
// them. Used as a fallback when fsnotify is not available or fails.
type PollingWatcher struct {
	interval  time.Duration
	dirs      map[string]bool // path -> recursive
	fileState map[string]fileSnapshot
	events    chan FileEvent
	errors    chan error
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
	isDir   bool
}

// NewPollingWatcher creates a polling watcher and starts its scan loop.
func NewPollingWatcher(interval time.Duration, buffer int) *PollingWatcher {
	p := &PollingWatcher{
		interval:  interval,
		dirs:      make(map[string]bool),
		fileState: make(map[string]fileSnapshot),
		events:    make(chan FileEvent, buffer),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Add registers dir and records its current contents as the baseline. A
// missing directory is still polled so its later creation is seen.
func (p *PollingWatcher) Add(dir string, recursive bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return fmt.Errorf("polling watcher stopped")
	}
	if prev, ok := p.dirs[dir]; ok && (prev || !recursive) {
		return nil
	}
	p.dirs[dir] = recursive
	for path, snap := range p.scanDir(dir, recursive) {
		p.fileState[path] = snap
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", dir)
	}
	return nil
}

func (p *PollingWatcher) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.detectChanges()
		}
	}
}

// Close stops the polling watcher. Safe to call multiple times.
func (p *PollingWatcher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}

	p.stopped = true
	close(p.stopCh)
	close(p.events)
	close(p.errors)
	return nil
}

// Events returns the channel of file events.
func (p *PollingWatcher) Events() <-chan FileEvent {
	return p.events
}

// Errors returns the channel of errors.
func (p *PollingWatcher) Errors() <-chan error {
	return p.errors
}

// Kind names the strategy.
func (p *PollingWatcher) Kind() string { return "polling" }

// scanDir records the entries of dir, or its whole subtree when recursive.
func (p *PollingWatcher) scanDir(dir string, recursive bool) map[string]fileSnapshot {
	state := make(map[string]fileSnapshot)
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return state
		}
		for _, e := range entries {
			info, err := e.Info()
			if err != nil {
				continue
			}
			state[filepath.Join(dir, e.Name())] = snapshotOf(info)
		}
		return state
	}

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == dir {
			return nil // Skip files we can't access
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		state[path] = snapshotOf(info)
		return nil
	})
	return state
}

func snapshotOf(info fs.FileInfo) fileSnapshot {
	return fileSnapshot{modTime: info.ModTime(), size: info.Size(), isDir: info.IsDir()}
}

// detectChanges compares current state with previous state and emits events.
func (p *PollingWatcher) detectChanges() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	current := make(map[string]fileSnapshot)
	for dir, recursive := range p.dirs {
		for path, snap := range p.scanDir(dir, recursive) {
			current[path] = snap
		}
	}

	now := time.Now()
	for path, snap := range current {
		prev, exists := p.fileState[path]
		switch {
		case !exists:
			p.emitEvent(FileEvent{Path: path, Operation: OpCreate, IsDir: snap.isDir, Timestamp: now})
		case !snap.isDir && (prev.modTime != snap.modTime || prev.size != snap.size):
			p.emitEvent(FileEvent{Path: path, Operation: OpModify, Timestamp: now})
		}
	}

	for path, snap := range p.fileState {
		if _, exists := current[path]; !exists {
			p.emitEvent(FileEvent{Path: path, Operation: OpDelete, IsDir: snap.isDir, Timestamp: now})
		}
	}

	p.fileState = current
}

// emitEvent sends an event to the events channel.
// Must be called with lock held.
func (p *PollingWatcher) emitEvent(event FileEvent) {
	select {
	case p.events <- event:
	default:
		slog.Warn("polling watcher buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()),
		)
	}
}
