package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/confscope/internal/scope"
)

func TestScanSandbox_SingleProjectFile(t *testing.T) {
	// Given: only the project settings mention sandbox
	f := newFixture(t)
	path := f.write(f.proj(".claude", "settings.json"),
		`{"sandbox": {"enabled": true, "network": {"allowedDomains": ["*.example.com"]}}}`)
	f.write(f.global("settings.json"), `{"model": "opus"}`)

	// When: scanning sandbox
	sb := ScanSandbox(f.input())

	// Then: only the set fields are populated, all from Project
	require.NotNil(t, sb.Enabled)
	assert.Equal(t, scope.Item[bool]{Value: true, Scope: scope.Project, FilePath: path, Editable: true}, *sb.Enabled)
	require.NotNil(t, sb.Network.AllowedDomains)
	assert.Equal(t, []string{"*.example.com"}, sb.Network.AllowedDomains.Value)
	assert.Equal(t, scope.Project, sb.Network.AllowedDomains.Scope)
	assert.Nil(t, sb.Network.AllowUnixSockets)
	assert.Nil(t, sb.Network.AllowLocalBinding)
	assert.Nil(t, sb.AutoAllowBashIfSandboxed)
}

func TestScanSandbox_LastValuePerField(t *testing.T) {
	f := newFixture(t)
	f.write(f.global("settings.json"), `{"sandbox": {"enabled": true, "autoAllowBashIfSandboxed": true,
		"network": {"allowLocalBinding": true, "allowUnixSockets": ["/var/run/docker.sock"]}}}`)
	f.write(f.proj(".claude", "settings.local.json"), `{"sandbox": {"enabled": false,
		"network": {"allowLocalBinding": "yes"}}}`)

	sb := ScanSandbox(f.input())

	require.NotNil(t, sb.Enabled)
	assert.False(t, sb.Enabled.Value)
	assert.Equal(t, scope.Local, sb.Enabled.Scope)
	// Wrong-typed value in the later file leaves the earlier one in place.
	require.NotNil(t, sb.Network.AllowLocalBinding)
	assert.True(t, sb.Network.AllowLocalBinding.Value)
	assert.Equal(t, scope.Global, sb.Network.AllowLocalBinding.Scope)
	assert.Equal(t, []string{"/var/run/docker.sock"}, sb.Network.AllowUnixSockets.Value)
	require.NotNil(t, sb.AutoAllowBashIfSandboxed)
	assert.False(t, sb.AutoAllowBashIfSandboxed.Editable)
}

func TestScanSandbox_NoSandboxAnywhere(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, SandboxSurface{}, ScanSandbox(f.input()))
}
