package engine

import (
	"context"

	"github.com/Aman-CERP/confscope/internal/watcher"
)

// OnConfigChange registers a listener for debounced change events and
// returns an idempotent unsubscribe function. A listener typically calls
// ScanConfig for event.ProjectPath, or for every open project when the
// event is global.
func (e *Engine) OnConfigChange(l watcher.Listener) func() {
	return e.watcher.Subscribe(l)
}

// StartWatcher begins watching shared configuration and the given project
// roots with their worktrees.
func (e *Engine) StartWatcher(ctx context.Context, roots ...string) error {
	return e.watcher.Start(ctx, roots...)
}

// RestartWatcher replaces the watched roots. Pending events for roots no
// longer watched are discarded.
func (e *Engine) RestartWatcher(roots ...string) error {
	return e.watcher.Restart(roots...)
}

// StopWatcher stops watching. It is safe to call when already stopped.
func (e *Engine) StopWatcher() error {
	return e.watcher.Stop()
}

// WatcherState reports whether the watcher is running.
func (e *Engine) WatcherState() watcher.State {
	return e.watcher.State()
}

// WatchedRoots returns the project roots being watched, worktrees included.
func (e *Engine) WatchedRoots() []string {
	return e.watcher.Roots()
}

// WatcherType reports the active event source ("fsnotify" or "polling"), or
// "" when stopped.
func (e *Engine) WatcherType() string {
	return e.watcher.WatcherType()
}
