package surface

import (
	"github.com/Aman-CERP/confscope/internal/fsread"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// KeybindingEntry is one key binding.
type KeybindingEntry struct {
	Key      string            `json:"key"`
	Command  string            `json:"command"`
	Context  string            `json:"context,omitempty"`
	Scope    scope.ConfigScope `json:"scope"`
	FilePath string            `json:"filePath"`
	Editable bool              `json:"editable"`
}

// KeybindingsSurface lists bindings from the global keybindings file.
type KeybindingsSurface struct {
	Entries []KeybindingEntry `json:"entries"`
}

// ScanKeybindings reads the global keybindings file. The file may be a
// top-level array of bindings or an object with a "bindings" array.
func ScanKeybindings(in Input) KeybindingsSurface {
	out := KeybindingsSurface{Entries: []KeybindingEntry{}}
	loc := in.Resolver.KeybindingsFile()

	var list []any
	switch doc := fsread.ReadJSON(loc.Path).(type) {
	case []any:
		list = doc
	case map[string]any:
		list, _ = doc["bindings"].([]any)
	}

	for _, raw := range list {
		entry := asMap(raw)
		if entry == nil {
			continue
		}
		context := asString(entry["context"])
		if context == "" {
			context = asString(entry["when"])
		}
		out.Entries = append(out.Entries, KeybindingEntry{
			Key:      asString(entry["key"]),
			Command:  asString(entry["command"]),
			Context:  context,
			Scope:    loc.Scope,
			FilePath: loc.Path,
			Editable: in.Gate.Editable(loc.Scope),
		})
	}
	return out
}
