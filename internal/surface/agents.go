package surface

import (
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/confscope/internal/fsread"
	"github.com/Aman-CERP/confscope/internal/locate"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// AgentEntry is a subagent definition parsed from a markdown file.
type AgentEntry struct {
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Model           string            `json:"model,omitempty"`
	Tools           []string          `json:"tools,omitempty"`
	DisallowedTools []string          `json:"disallowedTools,omitempty"`
	PermissionMode  string            `json:"permissionMode,omitempty"`
	Memory          string            `json:"memory,omitempty"`
	Color           string            `json:"color,omitempty"`
	Scope           scope.ConfigScope `json:"scope"`
	Source          scope.EntrySource `json:"source"`
	PluginName      string            `json:"pluginName,omitempty"`
	FilePath        string            `json:"filePath"`
	Editable        bool              `json:"editable"`
}

// AgentsSurface accumulates agents from every agent directory.
type AgentsSurface struct {
	Agents []AgentEntry `json:"agents"`
}

// ScanAgents reads the project agent directory, the global one, and every
// plugin agent directory in pluginDirs.
func ScanAgents(in Input, pluginDirs []locate.Location) AgentsSurface {
	out := AgentsSurface{Agents: []AgentEntry{}}
	dirs := append(in.Resolver.AgentDirs(in.ProjectPath), pluginDirs...)
	for _, loc := range dirs {
		for _, path := range fsread.MarkdownFiles(loc.Path) {
			content := fsread.ReadFile(path)
			if content == nil {
				continue
			}
			header, _ := fsread.FrontMatter(content)
			out.Agents = append(out.Agents, decodeAgent(in.Gate, loc, path, header))
		}
	}
	return out
}

// decodeAgent coerces an agent header. A missing or non-string name falls
// back to the file's base name.
func decodeAgent(gate *scope.Gate, loc locate.Location, path string, header map[string]any) AgentEntry {
	name := strings.TrimSpace(asString(header["name"]))
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return AgentEntry{
		Name:            name,
		Description:     asString(header["description"]),
		Model:           asString(header["model"]),
		Tools:           splitList(header["tools"]),
		DisallowedTools: splitList(header["disallowedTools"]),
		PermissionMode:  asString(header["permissionMode"]),
		Memory:          asString(header["memory"]),
		Color:           asString(header["color"]),
		Scope:           loc.Scope,
		Source:          loc.Source,
		PluginName:      loc.PluginName,
		FilePath:        path,
		Editable:        gate.Editable(loc.Scope),
	}
}
