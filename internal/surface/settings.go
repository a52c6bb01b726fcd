package surface

import (
	"github.com/Aman-CERP/confscope/internal/fsread"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// Top-level settings keys that have dedicated surfaces and are therefore
// left out of SettingsSurface.Effective.
var excludedSettingsKeys = map[string]bool{
	"permissions": true,
	"hooks":       true,
	"sandbox":     true,
}

// SettingsFile is one settings location that had object content.
type SettingsFile struct {
	Path     string            `json:"path"`
	Scope    scope.ConfigScope `json:"scope"`
	Editable bool              `json:"editable"`
	Content  map[string]any    `json:"content"`
}

// SettingsSurface holds every settings file and the merged view.
type SettingsSurface struct {
	Files     []SettingsFile             `json:"files"`
	Effective map[string]scope.Item[any] `json:"effective"`
}

// LoadSettingsFiles reads the settings locations in resolver order, keeping
// only those whose top level decoded to an object.
func LoadSettingsFiles(in Input) []SettingsFile {
	files := make([]SettingsFile, 0, 4)
	for _, loc := range in.Resolver.SettingsLocations(in.ProjectPath) {
		content := fsread.ReadJSONObject(loc.Path)
		if content == nil {
			continue
		}
		files = append(files, SettingsFile{
			Path:     loc.Path,
			Scope:    loc.Scope,
			Editable: in.Gate.Editable(loc.Scope),
			Content:  content,
		})
	}
	return files
}

// ScanSettings builds the settings surface for a project.
func ScanSettings(in Input) SettingsSurface {
	return SettingsFromFiles(in, LoadSettingsFiles(in))
}

// SettingsFromFiles builds the settings surface from already loaded files.
func SettingsFromFiles(in Input, files []SettingsFile) SettingsSurface {
	return SettingsSurface{
		Files:     files,
		Effective: mergeEffective(in, files),
	}
}

// mergeEffective applies last-wins per top-level key over files in order.
func mergeEffective(in Input, files []SettingsFile) map[string]scope.Item[any] {
	effective := make(map[string]scope.Item[any])
	for _, f := range files {
		for key, value := range f.Content {
			if excludedSettingsKeys[key] {
				continue
			}
			effective[key] = in.item(value, f.Scope, f.Path)
		}
	}
	return effective
}
