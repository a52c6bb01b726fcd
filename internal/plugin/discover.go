package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/Aman-CERP/confscope/internal/fsread"
	"github.com/Aman-CERP/confscope/internal/locate"
)

// Discoverer lists installed plugins for a project.
type Discoverer interface {
	Discover(ctx context.Context, projectPath string) ([]Plugin, error)
}

// DiscovererFunc adapts a function to Discoverer.
type DiscovererFunc func(ctx context.Context, projectPath string) ([]Plugin, error)

// Discover calls f.
func (f DiscovererFunc) Discover(ctx context.Context, projectPath string) ([]Plugin, error) {
	return f(ctx, projectPath)
}

// Supported installed_plugins.json versions.
const (
	registryV1 = 1
	registryV2 = 2
)

// FileDiscoverer reads the installed plugin registry under the global
// directory and resolves enablement from the enabledPlugins setting.
type FileDiscoverer struct {
	Resolver *locate.Resolver
}

// NewFileDiscoverer creates a discoverer over r.
func NewFileDiscoverer(r *locate.Resolver) *FileDiscoverer {
	return &FileDiscoverer{Resolver: r}
}

// Discover returns installed plugins sorted by ID. A missing registry is not
// an error. Plugins not mentioned by any enabledPlugins map are enabled.
func (d *FileDiscoverer) Discover(ctx context.Context, projectPath string) ([]Plugin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := d.Resolver.InstalledPluginsFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plugin registry %s: %w", path, err)
	}

	plugins, err := parseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("parse plugin registry %s: %w", path, err)
	}

	enabled := d.enablement(projectPath)
	for i := range plugins {
		if v, ok := enabled[plugins[i].ID]; ok {
			plugins[i].Enabled = v
		} else if v, ok := enabled[plugins[i].Name]; ok {
			plugins[i].Enabled = v
		}
	}
	return plugins, nil
}

// enablement merges enabledPlugins across settings locations, last wins.
func (d *FileDiscoverer) enablement(projectPath string) map[string]bool {
	out := make(map[string]bool)
	for _, loc := range d.Resolver.SettingsLocations(projectPath) {
		doc := fsread.ReadJSONObject(loc.Path)
		flags, _ := doc["enabledPlugins"].(map[string]any)
		for id, raw := range flags {
			v, ok := raw.(bool)
			if !ok {
				slog.Debug("ignoring non-boolean enabledPlugins entry",
					slog.String("path", loc.Path), slog.String("plugin", id))
				continue
			}
			out[id] = v
		}
	}
	return out
}

// parseRegistry decodes both registry layouts:
//
//	v1: {"version": 1, "plugins": {"<id>": {"installPath": ...}}}
//	v2: {"version": 2, "plugins": {"<id>": [{"installPath": ...}, ...]}}
//
// A document without "plugins" is read as a bare v1 map.
func parseRegistry(data []byte) ([]Plugin, error) {
	raw, err := fsread.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("registry is not an object")
	}

	version := registryV1
	if v, ok := doc["version"].(float64); ok {
		version = int(v)
	}
	if version != registryV1 && version != registryV2 {
		return nil, fmt.Errorf("unsupported registry version %d", version)
	}

	entries, ok := doc["plugins"].(map[string]any)
	if !ok {
		entries = doc
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		if id == "version" {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	plugins := make([]Plugin, 0, len(ids))
	for _, id := range ids {
		installPath := installPathOf(entries[id])
		if installPath == "" {
			continue
		}
		plugins = append(plugins, Plugin{
			ID:          id,
			Name:        nameOf(id),
			InstallPath: installPath,
			Enabled:     true,
		})
	}
	return plugins, nil
}

// installPathOf accepts a single install record or a list of them. For a
// list the last record with a path wins.
func installPathOf(v any) string {
	switch t := v.(type) {
	case map[string]any:
		s, _ := t["installPath"].(string)
		return s
	case []any:
		var path string
		for _, rec := range t {
			if p := installPathOf(rec); p != "" {
				path = p
			}
		}
		return path
	}
	return ""
}

// nameOf strips the marketplace suffix from an install ID.
func nameOf(id string) string {
	if i := strings.LastIndex(id, "@"); i > 0 {
		return id[:i]
	}
	return id
}
