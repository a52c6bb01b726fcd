package surface

import (
	"github.com/Aman-CERP/confscope/internal/scope"
)

// SandboxNetwork is the network part of the sandbox policy.
type SandboxNetwork struct {
	AllowedDomains    *scope.Item[[]string] `json:"allowedDomains"`
	AllowUnixSockets  *scope.Item[[]string] `json:"allowUnixSockets"`
	AllowLocalBinding *scope.Item[bool]     `json:"allowLocalBinding"`
}

// SandboxSurface is the effective sandbox policy. A nil field means no
// settings file set it.
type SandboxSurface struct {
	Enabled                  *scope.Item[bool] `json:"enabled"`
	Network                  SandboxNetwork    `json:"network"`
	AutoAllowBashIfSandboxed *scope.Item[bool] `json:"autoAllowBashIfSandboxed"`
}

// ScanSandbox builds the sandbox surface for a project.
func ScanSandbox(in Input) SandboxSurface {
	return SandboxFromFiles(in.Gate, LoadSettingsFiles(in))
}

// SandboxFromFiles walks each file's sandbox block in resolver order and
// keeps the last value seen per field. Values of the wrong type are ignored
// for that file.
func SandboxFromFiles(gate *scope.Gate, files []SettingsFile) SandboxSurface {
	var out SandboxSurface
	for _, f := range files {
		sb := asMap(f.Content["sandbox"])
		if sb == nil {
			continue
		}

		if v, ok := asBool(sb["enabled"]); ok {
			out.Enabled = scope.NewItem(v, f.Scope, f.Path, gate).Ptr()
		}
		if v, ok := asBool(sb["autoAllowBashIfSandboxed"]); ok {
			out.AutoAllowBashIfSandboxed = scope.NewItem(v, f.Scope, f.Path, gate).Ptr()
		}

		network := asMap(sb["network"])
		if network == nil {
			continue
		}
		if v, ok := asStringList(network["allowedDomains"]); ok {
			out.Network.AllowedDomains = scope.NewItem(v, f.Scope, f.Path, gate).Ptr()
		}
		if v, ok := asStringList(network["allowUnixSockets"]); ok {
			out.Network.AllowUnixSockets = scope.NewItem(v, f.Scope, f.Path, gate).Ptr()
		}
		if v, ok := asBool(network["allowLocalBinding"]); ok {
			out.Network.AllowLocalBinding = scope.NewItem(v, f.Scope, f.Path, gate).Ptr()
		}
	}
	return out
}
