package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/confscope/internal/scope"
)

func TestScanSettings_LastWinsInResolverOrder(t *testing.T) {
	// Given: the same key set at every scope
	f := newFixture(t)
	f.write(f.global("settings.json"), `{"model": "global", "theme": "dark"}`)
	f.write(f.proj(".claude", "settings.json"), `{"model": "project", "cleanupPeriodDays": 10}`)
	f.write(f.proj(".claude", "settings.local.json"), `{"model": "local"}`)
	f.write(f.managed("managed-settings.json"), `{"model": "managed"}`)

	// When: scanning settings
	s := ScanSettings(f.input())

	// Then: every file is kept and the last location wins per key
	require.Len(t, s.Files, 4)
	assert.Equal(t, "managed", s.Effective["model"].Value)
	assert.Equal(t, scope.Managed, s.Effective["model"].Scope)
	assert.Equal(t, "dark", s.Effective["theme"].Value)
	assert.Equal(t, scope.Global, s.Effective["theme"].Scope)
	assert.Equal(t, float64(10), s.Effective["cleanupPeriodDays"].Value)
	assert.Equal(t, f.proj(".claude", "settings.json"), s.Effective["cleanupPeriodDays"].FilePath)
}

func TestScanSettings_LocalOverridesProject(t *testing.T) {
	f := newFixture(t)
	f.write(f.proj(".claude", "settings.json"), `{"model": "project"}`)
	f.write(f.proj(".claude", "settings.local.json"), `{"model": "local"}`)

	s := ScanSettings(f.input())

	assert.Equal(t, "local", s.Effective["model"].Value)
	assert.Equal(t, scope.Local, s.Effective["model"].Scope)
	assert.True(t, s.Effective["model"].Editable)
}

func TestScanSettings_ExcludesDedicatedKeys(t *testing.T) {
	f := newFixture(t)
	f.write(f.proj(".claude", "settings.json"), `{
		"permissions": {"allow": ["Bash"]},
		"hooks": {},
		"sandbox": {"enabled": true},
		"env": {"A": "1"}
	}`)

	s := ScanSettings(f.input())

	assert.NotContains(t, s.Effective, "permissions")
	assert.NotContains(t, s.Effective, "hooks")
	assert.NotContains(t, s.Effective, "sandbox")
	assert.Contains(t, s.Effective, "env")
	// Raw file content still carries them for derived surfaces.
	require.Len(t, s.Files, 1)
	assert.Contains(t, s.Files[0].Content, "sandbox")
}

func TestScanSettings_MalformedFileIsolated(t *testing.T) {
	// Given: a broken project file between two valid ones
	f := newFixture(t)
	f.write(f.global("settings.json"), `{"model": "global"}`)
	f.write(f.proj(".claude", "settings.json"), `{"model": `)
	f.write(f.proj(".claude", "settings.local.json"), `["not", "an", "object"]`)

	s := ScanSettings(f.input())

	require.Len(t, s.Files, 1)
	assert.Equal(t, "global", s.Effective["model"].Value)
}

func TestScanSettings_NoConfigurationIsEmpty(t *testing.T) {
	f := newFixture(t)

	s := ScanSettings(f.input())

	assert.NotNil(t, s.Files)
	assert.Empty(t, s.Files)
	assert.Empty(t, s.Effective)
}

func TestScanSettings_EditableFollowsGate(t *testing.T) {
	f := newFixture(t)
	f.write(f.global("settings.json"), `{"model": "global"}`)

	before := ScanSettings(f.input())
	f.gate.Set(true)
	after := ScanSettings(f.input())

	assert.False(t, before.Effective["model"].Editable)
	assert.False(t, before.Files[0].Editable)
	assert.True(t, after.Effective["model"].Editable)
	// Earlier snapshot is unaffected.
	assert.False(t, before.Effective["model"].Editable)
}
