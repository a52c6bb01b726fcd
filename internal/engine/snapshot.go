package engine

import (
	"time"

	"github.com/Aman-CERP/confscope/internal/plugin"
	"github.com/Aman-CERP/confscope/internal/surface"
)

// Snapshot is the aggregated configuration of one project at one instant.
// It is never mutated after ScanConfig returns it.
type Snapshot struct {
	ProjectPath       string                     `json:"projectPath"`
	ScannedAt         time.Time                  `json:"scannedAt"`
	AllowGlobalWrites bool                       `json:"allowGlobalWrites"`
	Plugins           []plugin.Plugin            `json:"plugins"`
	Settings          surface.SettingsSurface    `json:"settings"`
	Permissions       surface.PermissionsSurface `json:"permissions"`
	Sandbox           surface.SandboxSurface     `json:"sandbox"`
	Hooks             surface.HooksSurface       `json:"hooks"`
	Mcp               surface.McpSurface         `json:"mcp"`
	Agents            surface.AgentsSurface      `json:"agents"`
	Rules             surface.RulesSurface       `json:"rules"`
	Keybindings       surface.KeybindingsSurface `json:"keybindings"`
	Memory            surface.MemorySurface      `json:"memory"`
}

// Surface names accepted by Snapshot.Surface.
const (
	SurfaceSettings    = "settings"
	SurfacePermissions = "permissions"
	SurfaceSandbox     = "sandbox"
	SurfaceHooks       = "hooks"
	SurfaceMcp         = "mcp"
	SurfaceAgents      = "agents"
	SurfaceRules       = "rules"
	SurfaceKeybindings = "keybindings"
	SurfaceMemory      = "memory"
	SurfacePlugins     = "plugins"
)

// SurfaceNames lists every surface name in snapshot order.
func SurfaceNames() []string {
	return []string{
		SurfaceSettings, SurfacePermissions, SurfaceSandbox, SurfaceHooks,
		SurfaceMcp, SurfaceAgents, SurfaceRules, SurfaceKeybindings,
		SurfaceMemory, SurfacePlugins,
	}
}

// Surface returns the named part of the snapshot.
func (s *Snapshot) Surface(name string) (any, bool) {
	switch name {
	case SurfaceSettings:
		return s.Settings, true
	case SurfacePermissions:
		return s.Permissions, true
	case SurfaceSandbox:
		return s.Sandbox, true
	case SurfaceHooks:
		return s.Hooks, true
	case SurfaceMcp:
		return s.Mcp, true
	case SurfaceAgents:
		return s.Agents, true
	case SurfaceRules:
		return s.Rules, true
	case SurfaceKeybindings:
		return s.Keybindings, true
	case SurfaceMemory:
		return s.Memory, true
	case SurfacePlugins:
		return s.Plugins, true
	default:
		return nil, false
	}
}
