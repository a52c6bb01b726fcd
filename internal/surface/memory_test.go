package surface

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/confscope/internal/scope"
)

func TestScanMemory_ListsNotesWithLineCounts(t *testing.T) {
	f := newFixture(t)
	dir := f.resolver.MemoryDir(f.project).Path
	f.write(filepath.Join(dir, "MEMORY.md"), "# Index\n- one\n- two\n")
	f.write(filepath.Join(dir, "debugging.md"), "single line")
	f.write(filepath.Join(dir, "scratch.json"), "{}")

	m := ScanMemory(f.input())

	require.Len(t, m.Files, 2)
	assert.Equal(t, "MEMORY.md", m.Files[0].Name)
	assert.Equal(t, 3, m.Files[0].LineCount)
	assert.Equal(t, "debugging.md", m.Files[1].Name)
	assert.Equal(t, 1, m.Files[1].LineCount)
	assert.Equal(t, scope.Local, m.Files[1].Scope)
	assert.True(t, m.Files[1].Editable)
}

func TestScanMemory_NoDirectory(t *testing.T) {
	m := ScanMemory(newFixture(t).input())
	assert.NotNil(t, m.Files)
	assert.Empty(t, m.Files)
}
