package surface

import (
	"path/filepath"

	"github.com/Aman-CERP/confscope/internal/fsread"
	"github.com/Aman-CERP/confscope/internal/locate"
	"github.com/Aman-CERP/confscope/internal/scope"
)

// McpServer is one declared MCP server with its provenance.
type McpServer struct {
	Name       string            `json:"name"`
	Transport  string            `json:"transport"`
	Command    string            `json:"command,omitempty"`
	Args       []string          `json:"args,omitempty"`
	URL        string            `json:"url,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Enabled    bool              `json:"enabled"`
	Scope      scope.ConfigScope `json:"scope"`
	Source     scope.EntrySource `json:"source"`
	PluginName string            `json:"pluginName,omitempty"`
	FilePath   string            `json:"filePath"`
	Editable   bool              `json:"editable"`
}

// McpSurface accumulates servers from every manifest.
type McpSurface struct {
	Servers []McpServer `json:"servers"`
}

// ScanMcp builds the MCP surface: project .mcp.json, user client config
// (user-level servers, then this project's servers), managed manifest, then
// each plugin manifest in pluginManifests.
func ScanMcp(in Input, pluginManifests []locate.Location) McpSurface {
	out := McpSurface{Servers: []McpServer{}}
	userConfig := in.Resolver.UserConfigFile()

	for _, loc := range in.Resolver.McpLocations(in.ProjectPath) {
		doc := fsread.ReadJSONObject(loc.Path)
		if doc == nil {
			continue
		}
		out.Servers = append(out.Servers, decodeServers(in.Gate, loc, asMap(doc["mcpServers"]))...)

		if loc.Path == userConfig {
			local := loc
			local.Scope = scope.Local
			out.Servers = append(out.Servers, decodeServers(in.Gate, local, projectServers(doc, in.ProjectPath))...)
		}
	}

	for _, loc := range pluginManifests {
		doc := fsread.ReadJSONObject(loc.Path)
		if doc == nil {
			continue
		}
		servers := asMap(doc["mcpServers"])
		if servers == nil {
			// Plugin manifests may list servers at the top level.
			servers = doc
		}
		out.Servers = append(out.Servers, decodeServers(in.Gate, loc, servers)...)
	}
	return out
}

// projectServers returns the per-project server block the user client config
// keeps under projects[<path>].
func projectServers(doc map[string]any, project string) map[string]any {
	projects := asMap(doc["projects"])
	if projects == nil {
		return nil
	}
	entry := asMap(projects[project])
	if entry == nil {
		entry = asMap(projects[filepath.Clean(project)])
	}
	return asMap(entry["mcpServers"])
}

// decodeServers converts a name -> definition map, skipping definitions
// that are not objects.
func decodeServers(gate *scope.Gate, loc locate.Location, servers map[string]any) []McpServer {
	var out []McpServer
	for _, name := range sortedKeys(servers) {
		def := asMap(servers[name])
		if def == nil {
			continue
		}
		out = append(out, decodeServer(gate, loc, name, def))
	}
	return out
}

// decodeServer coerces a single server definition.
func decodeServer(gate *scope.Gate, loc locate.Location, name string, def map[string]any) McpServer {
	disabled, _ := asBool(def["disabled"])
	args, _ := asStringList(def["args"])
	s := McpServer{
		Name:       name,
		Transport:  asString(def["type"]),
		Command:    asString(def["command"]),
		Args:       args,
		URL:        asString(def["url"]),
		Env:        asStringMap(def["env"]),
		Headers:    asStringMap(def["headers"]),
		Enabled:    !disabled,
		Scope:      loc.Scope,
		Source:     loc.Source,
		PluginName: loc.PluginName,
		FilePath:   loc.Path,
		Editable:   gate.Editable(loc.Scope),
	}
	if s.Transport == "" {
		switch {
		case s.Command != "":
			s.Transport = "stdio"
		case s.URL != "":
			s.Transport = "http"
		}
	}
	return s
}
