package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/confscope/internal/scope"
)

func TestScanKeybindings_ArrayWithCoercion(t *testing.T) {
	f := newFixture(t)
	path := f.write(f.global("keybindings.json"), `[
		{"key": "ctrl+k", "command": "clear", "context": "chat"},
		{"key": 17, "command": "submit", "when": "input"},
		"garbage"
	]`)

	k := ScanKeybindings(f.input())

	require.Len(t, k.Entries, 2)
	assert.Equal(t, KeybindingEntry{Key: "ctrl+k", Command: "clear", Context: "chat", Scope: scope.Global, FilePath: path}, k.Entries[0])
	assert.Equal(t, "", k.Entries[1].Key)
	assert.Equal(t, "submit", k.Entries[1].Command)
	assert.Equal(t, "input", k.Entries[1].Context)
}

func TestScanKeybindings_ObjectForm(t *testing.T) {
	f := newFixture(t)
	f.write(f.global("keybindings.json"), `{"bindings": [{"key": "esc", "command": "cancel"}]}`)
	f.gate.Set(true)

	k := ScanKeybindings(f.input())

	require.Len(t, k.Entries, 1)
	assert.True(t, k.Entries[0].Editable)
}

func TestScanKeybindings_MissingOrMalformed(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, ScanKeybindings(f.input()).Entries)

	f.write(f.global("keybindings.json"), `{"bindings": `)
	assert.Empty(t, ScanKeybindings(f.input()).Entries)
}
