// Package plugin overlays installed plugins onto the agent and MCP surfaces.
//
// A plugin contributes candidate locations only. The overlay does not check
// enablement; callers drop disabled plugins before building locations.
package plugin

import (
	"path/filepath"

	"github.com/Aman-CERP/confscope/internal/locate"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// Plugin is an installed plugin.
type Plugin struct {
	// ID is the install key, usually "name@marketplace".
	ID          string `json:"id"`
	Name        string `json:"name"`
	InstallPath string `json:"installPath"`
	Enabled     bool   `json:"enabled"`
}

// AgentLocations returns one agent directory per plugin.
func AgentLocations(plugins []Plugin) []locate.Location {
	return overlay(plugins, locate.AgentsDirName)
}

// McpLocations returns one MCP manifest path per plugin.
func McpLocations(plugins []Plugin) []locate.Location {
	return overlay(plugins, locate.ProjectMcpFile)
}

func overlay(plugins []Plugin, rel string) []locate.Location {
	out := make([]locate.Location, 0, len(plugins))
	for _, p := range plugins {
		if p.InstallPath == "" {
			continue
		}
		out = append(out, locate.Location{
			Path:       filepath.Join(p.InstallPath, rel),
			Scope:      scope.Global,
			Source:     scope.SourcePlugin,
			PluginName: p.Name,
		})
	}
	return out
}

// Enabled filters plugins down to the enabled ones, preserving order.
func Enabled(plugins []Plugin) []Plugin {
	out := make([]Plugin, 0, len(plugins))
	for _, p := range plugins {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}
