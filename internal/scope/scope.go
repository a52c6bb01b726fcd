package scope

import (
	"fmt"
	"strings"
)

// ConfigScope is the authority level of a configuration source.
type ConfigScope int

const (
	// Managed is organization-wide policy installed by an administrator.
	Managed ConfigScope = iota
	// Global is the user's own configuration shared by all projects.
	Global
	// Project is configuration checked into the project.
	Project
	// Local is per-user, per-project configuration that is not shared.
	Local
)

// All lists every scope from highest to lowest authority.
var All = []ConfigScope{Managed, Global, Project, Local}

// String returns the lowercase wire name of the scope.
func (s ConfigScope) String() string {
	switch s {
	case Managed:
		return "managed"
	case Global:
		return "global"
	case Project:
		return "project"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// ParseScope converts a wire name back into a ConfigScope.
func ParseScope(name string) (ConfigScope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "managed", "enterprise", "policy":
		return Managed, nil
	case "global", "user":
		return Global, nil
	case "project":
		return Project, nil
	case "local":
		return Local, nil
	default:
		return 0, fmt.Errorf("unknown config scope %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ConfigScope) MarshalText() ([]byte, error) {
	if s < Managed || s > Local {
		return nil, fmt.Errorf("invalid config scope %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ConfigScope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Precedence returns the authority rank of s. Lower rank means higher
// authority, so Managed is 0.
func Precedence(s ConfigScope) int {
	return int(s)
}

// Outranks reports whether a carries more authority than b.
func Outranks(a, b ConfigScope) bool {
	return Precedence(a) < Precedence(b)
}

// IsEditable reports whether values from s may be edited given the current
// write gate state.
func IsEditable(s ConfigScope, writeGateEnabled bool) bool {
	switch s {
	case Project, Local:
		return true
	case Global, Managed:
		return writeGateEnabled
	default:
		return false
	}
}

// EntrySource records where a discoverable entity (agent, MCP server) came
// from, independent of its authority scope.
type EntrySource string

const (
	SourceProject EntrySource = "project"
	SourceGlobal  EntrySource = "global"
	SourcePlugin  EntrySource = "plugin"
)
