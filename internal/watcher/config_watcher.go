package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	cserrors "github.com/Aman-CERP/confscope/internal/errors"
	"github.com/Aman-CERP/confscope/internal/locate"
)

// State is the watcher lifecycle state.
type State int

const (
	// StateStopped means no directories are observed.
	StateStopped State = iota
	// StateWatching means a source is running over the current roots.
	StateWatching
)

func (s State) String() string {
	if s == StateWatching {
		return "watching"
	}
	return "stopped"
}

// ownedDir is a watched directory and the project it belongs to ("" for
// shared configuration).
type ownedDir struct {
	locate.WatchDir
	project string
}

// attribution is a cached path classification.
type attribution struct {
	project  string
	relevant bool
}

type subscription struct {
	id       uint64
	listener Listener
}

// ConfigWatcher watches configuration directories for a set of project
// roots and their git worktrees.
//
// One mutex guards the watch set, roots, source and listener list. Raw
// events are attributed and handed to the debouncer under that mutex, so a
// Restart never lets an event from a removed root through.
type ConfigWatcher struct {
	resolver *locate.Resolver
	opts     Options

	mu          sync.Mutex
	state       State
	ctx         context.Context
	roots       []string
	dirs        []ownedDir
	src         source
	debouncer   *Debouncer
	stopCh      chan struct{}
	attribution *lru.Cache[string, attribution]
	listeners   []subscription
	nextID      uint64
}

// New creates a stopped watcher.
func New(resolver *locate.Resolver, opts Options) *ConfigWatcher {
	opts = opts.WithDefaults()
	cache, err := lru.New[string, attribution](opts.AttributionCacheSize)
	if err != nil {
		// Only a non-positive size fails, and WithDefaults rules that out.
		panic(err)
	}
	return &ConfigWatcher{
		resolver:    resolver,
		opts:        opts,
		attribution: cache,
	}
}

// Subscribe registers a listener and returns a function that removes it.
// The returned function is idempotent.
func (w *ConfigWatcher) Subscribe(l Listener) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	w.listeners = append(w.listeners, subscription{id: id, listener: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			for i, s := range w.listeners {
				if s.id == id {
					w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Start begins watching shared configuration plus each root and its
// worktrees. The watcher stops when ctx is cancelled.
func (w *ConfigWatcher) Start(ctx context.Context, roots ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateWatching {
		return cserrors.New(cserrors.ErrCodeWatcherState, "watcher already running", nil).
			WithSuggestion("Call Restart to change the watched roots")
	}

	w.ctx = ctx
	w.debouncer = NewDebouncer(w.opts.DebounceWindow, w.opts.EventBufferSize)
	w.stopCh = make(chan struct{})
	go w.fanOut(w.debouncer.Output())

	w.openLocked(roots)
	w.state = StateWatching

	go func(stop <-chan struct{}) {
		select {
		case <-ctx.Done():
			_ = w.Stop()
		case <-stop:
		}
	}(w.stopCh)

	slog.Info("config watcher started",
		slog.String("type", w.src.Kind()),
		slog.Int("roots", len(w.roots)),
		slog.Int("dirs", len(w.dirs)))
	return nil
}

// Restart tears down every watch, recomputes roots and worktrees, and
// watches again. Pending changes for roots no longer watched are dropped.
func (w *ConfigWatcher) Restart(roots ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateWatching {
		return cserrors.New(cserrors.ErrCodeWatcherState, "watcher is not running", nil)
	}

	previous := w.roots
	w.closeSourceLocked()
	w.openLocked(roots)

	current := make(map[string]bool, len(w.roots))
	for _, r := range w.roots {
		current[r] = true
	}
	for _, r := range previous {
		if !current[r] {
			w.debouncer.Drop(r)
		}
	}

	slog.Info("config watcher restarted",
		slog.Int("roots", len(w.roots)),
		slog.Int("dirs", len(w.dirs)))
	return nil
}

// Stop stops watching. Safe to call multiple times.
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateStopped {
		return nil
	}

	w.closeSourceLocked()
	w.debouncer.Stop()
	close(w.stopCh)
	w.roots = nil
	w.dirs = nil
	w.state = StateStopped

	slog.Info("config watcher stopped")
	return nil
}

// State returns the lifecycle state.
func (w *ConfigWatcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Roots returns the watched project roots, worktrees included.
func (w *ConfigWatcher) Roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// WatcherType returns "fsnotify", "polling", or "" when stopped.
func (w *ConfigWatcher) WatcherType() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.src == nil {
		return ""
	}
	return w.src.Kind()
}

// openLocked resolves roots, builds the watch set and starts a source.
func (w *ConfigWatcher) openLocked(roots []string) {
	w.roots = w.expandRoots(roots)
	w.attribution.Purge()

	w.dirs = w.dirs[:0]
	for _, d := range w.resolver.GlobalWatchDirs() {
		w.dirs = append(w.dirs, ownedDir{WatchDir: d})
	}
	for _, root := range w.roots {
		for _, d := range w.resolver.ProjectWatchDirs(root) {
			w.dirs = append(w.dirs, ownedDir{WatchDir: d, project: root})
		}
	}

	w.src = w.newSource()
	for _, d := range w.dirs {
		// Every watched directory's parent is also in the set, so a missing
		// one is added once its parent reports it.
		w.addLocked(d.Path, d.Recursive)
	}
	go w.run(w.src)
}

// newSource prefers fsnotify and falls back to polling.
func (w *ConfigWatcher) newSource() source {
	if !w.opts.ForcePolling {
		src, err := newFsnotifySource(w.opts.EventBufferSize)
		if err == nil {
			return src
		}
		werr := cserrors.New(cserrors.ErrCodeWatchDegraded, "fsnotify unavailable, falling back to polling", err)
		slog.Warn(werr.Message,
			slog.String("error_code", werr.Code),
			slog.String("error", err.Error()),
			slog.Duration("poll_interval", w.opts.PollInterval))
	}
	return NewPollingWatcher(w.opts.PollInterval, w.opts.EventBufferSize)
}

// expandRoots makes roots absolute, adds their worktrees and removes
// duplicates, keeping first-seen order.
func (w *ConfigWatcher) expandRoots(roots []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range roots {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		trees, err := locate.Worktrees(w.ctx, root)
		if err != nil {
			slog.Debug("worktree discovery failed",
				slog.String("root", root),
				slog.String("error", err.Error()))
			trees = []string{root}
		}
		add(root)
		for _, t := range trees {
			add(t)
		}
	}
	return out
}

func (w *ConfigWatcher) closeSourceLocked() {
	if w.src == nil {
		return
	}
	if err := w.src.Close(); err != nil {
		slog.Debug("closing watch source", slog.String("error", err.Error()))
	}
	w.src = nil
}

// run drains one source until it closes.
func (w *ConfigWatcher) run(src source) {
	events, errs := src.Events(), src.Errors()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			w.handle(src, event)
		case err, ok := <-errs:
			if !ok {
				return
			}
			werr := cserrors.Wrap(cserrors.ErrCodeWatchFailed, err)
			slog.Warn("watch error",
				slog.String("error_code", werr.Code),
				slog.String("error", err.Error()))
		}
	}
}

// handle attributes a raw event and feeds the debouncer. Events from a
// source that has since been replaced are ignored.
func (w *ConfigWatcher) handle(src source, event FileEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateWatching || src != w.src {
		return
	}

	project, relevant := w.attributeLocked(event.Path)
	if !relevant {
		return
	}
	if event.IsDir && event.Operation == OpCreate {
		w.watchNewDirLocked(event.Path)
	}
	w.debouncer.Add(project, event)
}

// attributeLocked finds the project owning path.
func (w *ConfigWatcher) attributeLocked(path string) (string, bool) {
	if a, ok := w.attribution.Get(path); ok {
		return a.project, a.relevant
	}

	a := attribution{}
	parent, base := filepath.Dir(path), filepath.Base(path)
	for _, d := range w.dirs {
		if (d.Path == parent && d.Relevant(base)) || (d.Recursive && within(d.Path, path)) {
			a = attribution{project: d.project, relevant: true}
			break
		}
	}
	w.attribution.Add(path, a)
	return a.project, a.relevant
}

// watchNewDirLocked starts observing a directory that appeared after the
// watch set was built, along with any configured directories beneath it.
func (w *ConfigWatcher) watchNewDirLocked(path string) {
	for _, d := range w.dirs {
		switch {
		case d.Path == path || within(path, d.Path):
			w.addLocked(d.Path, d.Recursive)
		case d.Recursive && within(d.Path, path):
			w.addLocked(path, true)
		}
	}
}

func (w *ConfigWatcher) addLocked(path string, recursive bool) {
	if err := w.src.Add(path, recursive); err != nil {
		slog.Debug("directory not watched yet",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

// fanOut delivers change events to listeners until the debouncer closes.
func (w *ConfigWatcher) fanOut(out <-chan ChangeEvent) {
	for event := range out {
		w.mu.Lock()
		stale := !event.Global() && !containsRoot(w.roots, event.ProjectPath)
		listeners := make([]Listener, len(w.listeners))
		for i, s := range w.listeners {
			listeners[i] = s.listener
		}
		w.mu.Unlock()

		if stale {
			continue
		}

		slog.Debug("config changed",
			slog.String("project", event.ProjectPath),
			slog.Int("paths", len(event.Paths)))
		for _, l := range listeners {
			notify(l, event)
		}
	}
}

func notify(l Listener, event ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("config change listener panicked",
				slog.String("project", event.ProjectPath),
				slog.Any("panic", r))
		}
	}()
	l(event)
}

func containsRoot(roots []string, root string) bool {
	for _, r := range roots {
		if r == root {
			return true
		}
	}
	return false
}

// within reports whether path lies strictly below dir.
func within(dir, path string) bool {
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
