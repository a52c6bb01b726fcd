package surface

import (
	"github.com/Aman-CERP/confscope/internal/scope"
)

// RuleKind is the decision a permission rule asks for.
type RuleKind string

const (
	Allow RuleKind = "allow"
	Ask   RuleKind = "ask"
	Deny  RuleKind = "deny"
)

// ruleKinds is the order rules are read from each file.
var ruleKinds = []RuleKind{Allow, Ask, Deny}

// PermissionRule is a single rule string with its provenance.
type PermissionRule struct {
	Rule     string            `json:"rule"`
	Kind     RuleKind          `json:"kind"`
	Scope    scope.ConfigScope `json:"scope"`
	FilePath string            `json:"filePath"`
	Editable bool              `json:"editable"`
}

// PermissionsSurface reports rules from every scope. Rules are additive
// across scopes; only DefaultMode is last-wins.
type PermissionsSurface struct {
	Rules                 []PermissionRule     `json:"rules"`
	DefaultMode           *scope.Item[string]  `json:"defaultMode"`
	AdditionalDirectories []scope.Item[string] `json:"additionalDirectories"`
}

// ScanPermissions builds the permissions surface for a project.
func ScanPermissions(in Input) PermissionsSurface {
	return PermissionsFromFiles(in.Gate, LoadSettingsFiles(in))
}

// PermissionsFromFiles derives the permissions surface from settings files
// already loaded in resolver order.
func PermissionsFromFiles(gate *scope.Gate, files []SettingsFile) PermissionsSurface {
	out := PermissionsSurface{
		Rules:                 []PermissionRule{},
		AdditionalDirectories: []scope.Item[string]{},
	}

	for _, f := range files {
		perms := asMap(f.Content["permissions"])
		if perms == nil {
			continue
		}

		for _, kind := range ruleKinds {
			rules, _ := asStringList(perms[string(kind)])
			for _, rule := range rules {
				out.Rules = append(out.Rules, PermissionRule{
					Rule:     rule,
					Kind:     kind,
					Scope:    f.Scope,
					FilePath: f.Path,
					Editable: gate.Editable(f.Scope),
				})
			}
		}

		if mode, ok := perms["defaultMode"].(string); ok && mode != "" {
			out.DefaultMode = scope.NewItem(mode, f.Scope, f.Path, gate).Ptr()
		}

		dirs, _ := asStringList(perms["additionalDirectories"])
		for _, dir := range dirs {
			out.AdditionalDirectories = append(out.AdditionalDirectories, scope.NewItem(dir, f.Scope, f.Path, gate))
		}
	}
	return out
}
