package watcher

import (
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a raw file system event.
type FileEvent struct {
	// Path is the absolute path to the file or directory.
	Path string

	// Operation is the type of file system operation.
	Operation Operation

	// IsDir indicates if the event is for a directory.
	IsDir bool

	// Timestamp is when the event was detected.
	Timestamp time.Time
}

// ChangeEvent tells listeners that configuration for a project changed.
type ChangeEvent struct {
	// Timestamp is when the debounced batch was emitted.
	Timestamp time.Time `json:"timestamp"`

	// ProjectPath is the affected project root or worktree. Empty means
	// shared configuration changed and every project is affected.
	ProjectPath string `json:"projectPath"`

	// Paths lists the changed files, sorted.
	Paths []string `json:"paths"`
}

// Global reports whether the change affects every project.
func (e ChangeEvent) Global() bool {
	return e.ProjectPath == ""
}

// Listener receives change notifications. Listeners run on a dedicated
// goroutine, one at a time, in registration order.
type Listener func(ChangeEvent)

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the quiet period that ends a burst of changes.
	// Default: 300ms
	DebounceWindow time.Duration

	// PollInterval is the interval for polling mode (fallback).
	// Default: 2s
	PollInterval time.Duration

	// ForcePolling skips fsnotify entirely.
	ForcePolling bool

	// EventBufferSize is the size of the change event buffer.
	// Default: 64
	EventBufferSize int

	// AttributionCacheSize bounds the path to project cache.
	// Default: 1024
	AttributionCacheSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:       300 * time.Millisecond,
		PollInterval:         2 * time.Second,
		EventBufferSize:      64,
		AttributionCacheSize: 1024,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	if o.AttributionCacheSize <= 0 {
		o.AttributionCacheSize = defaults.AttributionCacheSize
	}
	return o
}
