package surface

import (
	"github.com/Aman-CERP/confscope/internal/scope"
)

// HookEntry is one hook command registered for a lifecycle event.
type HookEntry struct {
	Event    string            `json:"event"`
	Matcher  string            `json:"matcher,omitempty"`
	Type     string            `json:"type"`
	Command  string            `json:"command,omitempty"`
	Timeout  int               `json:"timeout,omitempty"`
	Scope    scope.ConfigScope `json:"scope"`
	FilePath string            `json:"filePath"`
	Editable bool              `json:"editable"`
}

// HooksSurface accumulates hooks from every settings file.
type HooksSurface struct {
	Hooks []HookEntry `json:"hooks"`
}

// ScanHooks builds the hooks surface for a project.
func ScanHooks(in Input) HooksSurface {
	return HooksFromFiles(in.Gate, LoadSettingsFiles(in))
}

// HooksFromFiles flattens each file's hooks block:
//
//	{"<Event>": [{"matcher": "...", "hooks": [{"type": "command", "command": "..."}]}]}
//
// Matcher groups or hooks that are not objects are skipped.
func HooksFromFiles(gate *scope.Gate, files []SettingsFile) HooksSurface {
	out := HooksSurface{Hooks: []HookEntry{}}
	for _, f := range files {
		events := asMap(f.Content["hooks"])
		for _, event := range sortedKeys(events) {
			groups, _ := events[event].([]any)
			for _, g := range groups {
				group := asMap(g)
				if group == nil {
					continue
				}
				matcher := asString(group["matcher"])
				hooks, _ := group["hooks"].([]any)
				for _, h := range hooks {
					hook := asMap(h)
					if hook == nil {
						continue
					}
					entry := HookEntry{
						Event:    event,
						Matcher:  matcher,
						Type:     asString(hook["type"]),
						Command:  asString(hook["command"]),
						Scope:    f.Scope,
						FilePath: f.Path,
						Editable: gate.Editable(f.Scope),
					}
					if entry.Type == "" {
						entry.Type = "command"
					}
					if timeout, ok := asInt(hook["timeout"]); ok {
						entry.Timeout = timeout
					}
					out.Hooks = append(out.Hooks, entry)
				}
			}
		}
	}
	return out
}
