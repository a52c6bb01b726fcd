package watcher

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cserrors "github.com/Aman-CERP/confscope/internal/errors"
	"github.com/Aman-CERP/confscope/internal/locate"
)

type layout struct {
	base     string
	resolver *locate.Resolver
}

func newLayout(t *testing.T) layout {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	global := filepath.Join(base, "home", ".claude")
	require.NoError(t, os.MkdirAll(global, 0o755))
	return layout{
		base: base,
		resolver: locate.NewResolver(
			locate.WithGlobalDir(global),
			locate.WithManagedDir(filepath.Join(base, "managed")),
			locate.WithUserConfigFile(filepath.Join(base, "home", ".claude.json")),
		),
	}
}

func (l layout) project(t *testing.T, name string) string {
	t.Helper()
	root := filepath.Join(l.base, "work", name)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".claude"), 0o755))
	return root
}

// collector records change events delivered to a listener.
type collector struct {
	ch chan ChangeEvent
}

func newCollector() *collector {
	return &collector{ch: make(chan ChangeEvent, 32)}
}

func (c *collector) listen(ev ChangeEvent) { c.ch <- ev }

func (c *collector) next(t *testing.T) ChangeEvent {
	t.Helper()
	select {
	case ev := <-c.ch:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change event")
	}
	return ChangeEvent{}
}

func (c *collector) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-c.ch:
		t.Fatalf("unexpected change event: %+v", ev)
	case <-time.After(wait):
	}
}

// until drains events until one satisfies match.
func (c *collector) until(t *testing.T, match func(ChangeEvent) bool) ChangeEvent {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-c.ch:
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timeout waiting for matching change event")
			return ChangeEvent{}
		}
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func startWatcher(t *testing.T, l layout, opts Options, roots ...string) (*ConfigWatcher, *collector) {
	t.Helper()
	w := New(l.resolver, opts)
	c := newCollector()
	w.Subscribe(c.listen)
	require.NoError(t, w.Start(context.Background(), roots...))
	t.Cleanup(func() { _ = w.Stop() })
	return w, c
}

var modes = []struct {
	name string
	opts Options
}{
	{"fsnotify", Options{DebounceWindow: 100 * time.Millisecond}},
	{"polling", Options{DebounceWindow: 100 * time.Millisecond, PollInterval: 30 * time.Millisecond, ForcePolling: true}},
}

func TestConfigWatcher_BurstYieldsOneEvent(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			// Given: a watched project
			l := newLayout(t)
			root := l.project(t, "proj")
			w, c := startWatcher(t, l, m.opts, root)
			assert.Equal(t, m.name, w.WatcherType())

			// When: the project settings are written several times quickly
			settings := filepath.Join(root, ".claude", "settings.json")
			for i := 0; i < 5; i++ {
				write(t, settings, `{"model": "`+string(rune('a'+i))+`"}`)
				time.Sleep(10 * time.Millisecond)
			}

			// Then: one event attributed to the project
			ev := c.next(t)
			assert.Equal(t, root, ev.ProjectPath)
			assert.Contains(t, ev.Paths, settings)
			c.none(t, 400*time.Millisecond)
		})
	}
}

func TestConfigWatcher_GlobalChangeHasEmptyProject(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			l := newLayout(t)
			root := l.project(t, "proj")
			_, c := startWatcher(t, l, m.opts, root)

			write(t, filepath.Join(l.resolver.GlobalDir(), "settings.json"), `{}`)

			ev := c.next(t)
			assert.True(t, ev.Global())
			assert.Empty(t, ev.ProjectPath)
		})
	}
}

func TestConfigWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	l := newLayout(t)
	root := l.project(t, "proj")
	_, c := startWatcher(t, l, modes[1].opts, root)

	// When: files that are not configuration change
	write(t, filepath.Join(root, "README.md"), "# proj")
	write(t, filepath.Join(root, ".claude", "notes.txt"), "scratch")
	write(t, filepath.Join(l.base, "home", "other.json"), "{}")

	// Then: nothing is reported
	c.none(t, 400*time.Millisecond)
}

func TestConfigWatcher_MemoryDirAttributedToProject(t *testing.T) {
	l := newLayout(t)
	root := l.project(t, "proj")
	memory := l.resolver.MemoryDir(root).Path
	require.NoError(t, os.MkdirAll(memory, 0o755))
	_, c := startWatcher(t, l, modes[0].opts, root)

	note := filepath.Join(memory, "MEMORY.md")
	write(t, note, "- remember this")

	ev := c.next(t)
	assert.Equal(t, root, ev.ProjectPath)
	assert.Equal(t, []string{note}, ev.Paths)
}

func TestConfigWatcher_GlobalDirCreatedAfterStart(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			// Given: the global directory does not exist when watching starts
			l := newLayout(t)
			root := l.project(t, "proj")
			global := l.resolver.GlobalDir()
			require.NoError(t, os.RemoveAll(global))
			_, c := startWatcher(t, l, m.opts, root)

			// When: the directory appears
			require.NoError(t, os.Mkdir(global, 0o755))
			created := c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, global) })
			assert.True(t, created.Global())

			// Then: settings written inside it are reported, repeatedly
			settings := filepath.Join(global, "settings.json")
			write(t, settings, `{"model": "a"}`)
			ev := c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, settings) })
			assert.True(t, ev.Global())

			time.Sleep(50 * time.Millisecond)
			write(t, settings, `{"model": "bb"}`)
			ev = c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, settings) })
			assert.True(t, ev.Global())
		})
	}
}

func TestConfigWatcher_ManagedDirCreatedAfterStart(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			// Given: no managed directory
			l := newLayout(t)
			root := l.project(t, "proj")
			_, c := startWatcher(t, l, m.opts, root)

			// When: the managed directory and its settings appear
			managed := l.resolver.ManagedDir()
			require.NoError(t, os.Mkdir(managed, 0o755))
			ev := c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, managed) })
			assert.True(t, ev.Global())
			settings := filepath.Join(managed, "managed-settings.json")
			write(t, settings, `{"permissions": {"deny": ["Bash"]}}`)

			// Then: the managed settings change is global
			ev = c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, settings) })
			assert.True(t, ev.Global())
		})
	}
}

func TestConfigWatcher_MemoryDirCreatedAfterStart(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			// Given: a project whose memory directory chain does not exist yet
			l := newLayout(t)
			root := l.project(t, "proj")
			_, c := startWatcher(t, l, m.opts, root)
			memory := l.resolver.MemoryDir(root).Path
			encoded := filepath.Dir(memory)
			projects := filepath.Dir(encoded)

			// When: each level is created in turn
			require.NoError(t, os.Mkdir(projects, 0o755))
			ev := c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, projects) })
			assert.True(t, ev.Global())

			require.NoError(t, os.Mkdir(encoded, 0o755))
			ev = c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, encoded) })
			assert.Equal(t, root, ev.ProjectPath)

			require.NoError(t, os.Mkdir(memory, 0o755))
			ev = c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, memory) })
			assert.Equal(t, root, ev.ProjectPath)

			// Then: notes written inside are attributed to the project
			note := filepath.Join(memory, "MEMORY.md")
			write(t, note, "- remember this")
			ev = c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, note) })
			assert.Equal(t, root, ev.ProjectPath)

			second := filepath.Join(memory, "debugging.md")
			write(t, second, "- check the logs")
			ev = c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, second) })
			assert.Equal(t, root, ev.ProjectPath)
		})
	}
}

func TestConfigWatcher_NewlyCreatedDirIsWatched(t *testing.T) {
	// Given: a project without a rules directory
	l := newLayout(t)
	root := l.project(t, "proj")
	_, c := startWatcher(t, l, modes[0].opts, root)

	// When: the rules directory appears
	rules := filepath.Join(root, ".claude", "rules")
	require.NoError(t, os.MkdirAll(rules, 0o755))
	first := c.next(t)
	assert.Contains(t, first.Paths, rules)

	// Then: files written inside it afterwards are reported
	rule := filepath.Join(rules, "style.md")
	write(t, rule, "Use tabs.")
	ev := c.next(t)
	assert.Equal(t, root, ev.ProjectPath)
	assert.Contains(t, ev.Paths, rule)
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	args = append([]string{"-c", "user.email=dev@example.com", "-c", "user.name=dev", "-c", "init.defaultBranch=main"}, args...)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func TestConfigWatcher_LinkedWorktreeIsWatched(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			// Given: a repository with a committed .claude dir and a linked worktree
			l := newLayout(t)
			repo := l.project(t, "repo")
			write(t, filepath.Join(repo, ".claude", "settings.json"), `{}`)
			gitCmd(t, repo, "init", "-q")
			gitCmd(t, repo, "add", ".")
			gitCmd(t, repo, "commit", "-q", "-m", "initial")
			wt := filepath.Join(l.base, "work", "repo-feature")
			gitCmd(t, repo, "worktree", "add", "-q", "-b", "feature", wt)

			// When: only the main checkout is passed to Start
			w, c := startWatcher(t, l, m.opts, repo)

			// Then: the worktree is a root and its settings changes are attributed to it
			assert.Contains(t, w.Roots(), wt)
			settings := filepath.Join(wt, ".claude", "settings.json")
			write(t, settings, `{"model": "wt"}`)
			ev := c.until(t, func(ev ChangeEvent) bool { return slices.Contains(ev.Paths, settings) })
			assert.Equal(t, wt, ev.ProjectPath)
		})
	}
}

func TestConfigWatcher_RestartDropsRemovedRoots(t *testing.T) {
	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			// Given: two watched projects
			l := newLayout(t)
			a := l.project(t, "a")
			b := l.project(t, "b")
			w, c := startWatcher(t, l, m.opts, a, b)
			assert.Equal(t, []string{a, b}, w.Roots())

			// When: a change to a is pending and the watcher restarts with b only
			write(t, filepath.Join(a, ".mcp.json"), `{}`)
			time.Sleep(60 * time.Millisecond)
			require.NoError(t, w.Restart(b))
			assert.Equal(t, []string{b}, w.Roots())

			// Then: a is silent, b still reports
			write(t, filepath.Join(a, ".claude", "settings.json"), `{}`)
			c.none(t, 400*time.Millisecond)

			write(t, filepath.Join(b, ".mcp.json"), `{}`)
			ev := c.next(t)
			assert.Equal(t, b, ev.ProjectPath)
		})
	}
}

func TestConfigWatcher_UnsubscribeIsIdempotent(t *testing.T) {
	l := newLayout(t)
	root := l.project(t, "proj")
	w, kept := startWatcher(t, l, modes[0].opts, root)

	removed := newCollector()
	unsubscribe := w.Subscribe(removed.listen)
	unsubscribe()
	unsubscribe()

	write(t, filepath.Join(root, ".mcp.json"), `{}`)

	kept.next(t)
	removed.none(t, 300*time.Millisecond)
}

func TestConfigWatcher_ListenersRunInRegistrationOrder(t *testing.T) {
	l := newLayout(t)
	root := l.project(t, "proj")
	w := New(l.resolver, modes[0].opts)

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})
	w.Subscribe(func(ChangeEvent) { mu.Lock(); order = append(order, "first"); mu.Unlock() })
	w.Subscribe(func(ChangeEvent) { panic("listener failure") })
	w.Subscribe(func(ChangeEvent) {
		mu.Lock()
		order = append(order, "third")
		mu.Unlock()
		close(done)
	})
	require.NoError(t, w.Start(context.Background(), root))
	defer func() { _ = w.Stop() }()

	write(t, filepath.Join(root, ".mcp.json"), `{}`)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for listeners")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestConfigWatcher_StateTransitions(t *testing.T) {
	l := newLayout(t)
	root := l.project(t, "proj")
	w := New(l.resolver, modes[1].opts)

	// Stopped: Restart is rejected, Stop is a no-op
	assert.Equal(t, StateStopped, w.State())
	assert.Equal(t, cserrors.ErrCodeWatcherState, cserrors.GetCode(w.Restart(root)))
	require.NoError(t, w.Stop())
	assert.Empty(t, w.WatcherType())

	// Watching: a second Start is rejected
	require.NoError(t, w.Start(context.Background(), root))
	assert.Equal(t, StateWatching, w.State())
	assert.Equal(t, cserrors.ErrCodeWatcherState, cserrors.GetCode(w.Start(context.Background(), root)))

	// Stopped again, then startable
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.Equal(t, StateStopped, w.State())
	assert.Empty(t, w.Roots())
	require.NoError(t, w.Start(context.Background(), root))
	require.NoError(t, w.Stop())
}

func TestConfigWatcher_StopsWhenContextCancelled(t *testing.T) {
	l := newLayout(t)
	root := l.project(t, "proj")
	w := New(l.resolver, modes[1].opts)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, root))
	cancel()

	assert.Eventually(t, func() bool { return w.State() == StateStopped }, time.Second, 10*time.Millisecond)
}

func TestConfigWatcher_RootsAreDeduplicated(t *testing.T) {
	l := newLayout(t)
	root := l.project(t, "proj")
	w, _ := startWatcher(t, l, modes[1].opts, root, root+string(filepath.Separator), filepath.Join(root, "..", "proj"))

	assert.Equal(t, []string{root}, w.Roots())
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{PollInterval: time.Second}.WithDefaults()

	assert.Equal(t, 300*time.Millisecond, got.DebounceWindow)
	assert.Equal(t, time.Second, got.PollInterval)
	assert.Equal(t, 64, got.EventBufferSize)
	assert.Equal(t, 1024, got.AttributionCacheSize)
}
