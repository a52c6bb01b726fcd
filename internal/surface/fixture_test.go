package surface

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/confscope/internal/locate"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// fixture is an isolated on-disk layout: a home with a global dir, a managed
// dir, and one project.
type fixture struct {
	t        *testing.T
	base     string
	project  string
	resolver *locate.Resolver
	gate     *scope.Gate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	project := filepath.Join(base, "work", "proj")
	require.NoError(t, os.MkdirAll(project, 0o755))
	return &fixture{
		t:       t,
		base:    base,
		project: project,
		resolver: locate.NewResolver(
			locate.WithGlobalDir(filepath.Join(base, "home", ".claude")),
			locate.WithManagedDir(filepath.Join(base, "managed")),
			locate.WithUserConfigFile(filepath.Join(base, "home", ".claude.json")),
		),
		gate: scope.NewGate(false),
	}
}

func (f *fixture) input() Input {
	return Input{Resolver: f.resolver, Gate: f.gate, ProjectPath: f.project}
}

func (f *fixture) write(path, content string) string {
	f.t.Helper()
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) global(rel ...string) string {
	return filepath.Join(append([]string{f.resolver.GlobalDir()}, rel...)...)
}

func (f *fixture) managed(rel ...string) string {
	return filepath.Join(append([]string{f.resolver.ManagedDir()}, rel...)...)
}

func (f *fixture) proj(rel ...string) string {
	return filepath.Join(append([]string{f.project}, rel...)...)
}
