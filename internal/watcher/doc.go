// Package watcher observes configuration files and notifies listeners when
// a project's effective configuration may have changed.
//
// The package implements a hybrid watching strategy:
//   - Primary: fsnotify for efficient event-based watching
//   - Fallback: Polling for environments where fsnotify fails (network mounts, Docker volumes)
//
// Only the directories that hold configuration are observed. Each raw event
// is attributed to the project root (or worktree) that owns it, or to ""
// for configuration shared by every project. Events are debounced per
// project so a burst of writes yields a single ChangeEvent.
//
// Usage:
//
//	w := watcher.New(resolver, watcher.DefaultOptions())
//	unsubscribe := w.Subscribe(func(ev watcher.ChangeEvent) {
//	    snapshot, _ := eng.ScanConfig(ctx, ev.ProjectPath)
//	    ...
//	})
//	defer unsubscribe()
//
//	if err := w.Start(ctx, "/path/to/project"); err != nil {
//	    return err
//	}
//	defer w.Stop()
package watcher
