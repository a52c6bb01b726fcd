package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// env is an isolated home, managed dir, project and confscope config file.
type env struct {
	base       string
	global     string
	project    string
	configFile string
}

func newEnv(t *testing.T) env {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	e := env{
		base:       base,
		global:     filepath.Join(base, "home", ".claude"),
		project:    filepath.Join(base, "work", "proj"),
		configFile: filepath.Join(base, "confscope.yaml"),
	}
	require.NoError(t, os.MkdirAll(e.global, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(e.project, ".claude"), 0o755))
	writeFile(t, e.configFile, `version: 1
paths:
  global_dir: `+e.global+`
  managed_dir: `+filepath.Join(base, "managed")+`
  user_config_file: `+filepath.Join(base, "home", ".claude.json")+`
watch:
  debounce: 50ms
  poll_interval: 50ms
  force_polling: true
log:
  level: error
`)
	return e
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, e env, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &syncBuffer{}, &syncBuffer{}
	err := runContext(context.Background(), e, out, errOut, args...)
	return out.String(), errOut.String(), err
}

func runContext(ctx context.Context, e env, out, errOut io.Writer, args ...string) error {
	root := NewRootCmd()
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(append([]string{"--config", e.configFile}, args...))
	return root.ExecuteContext(ctx)
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
