package locate

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/Aman-CERP/confscope/internal/scope"
)

// File and directory names of the on-disk layout.
const (
	ClaudeDirName        = ".claude"
	SettingsFile         = "settings.json"
	LocalSettingsFile    = "settings.local.json"
	ManagedSettingsFile  = "managed-settings.json"
	ManagedMcpFile       = "managed-mcp.json"
	ProjectMcpFile       = ".mcp.json"
	UserConfigFileName   = ".claude.json"
	KeybindingsFileName  = "keybindings.json"
	AgentsDirName        = "agents"
	RulesDirName         = "rules"
	ProjectsDirName      = "projects"
	MemoryDirName        = "memory"
	PluginsDirName       = "plugins"
	InstalledPluginsFile = "installed_plugins.json"
)

// Location is one candidate file or directory tagged with provenance.
type Location struct {
	Path       string            `json:"path"`
	Scope      scope.ConfigScope `json:"scope"`
	Source     scope.EntrySource `json:"source,omitempty"`
	PluginName string            `json:"pluginName,omitempty"`
}

// Resolver maps a project path to the candidate locations of every surface.
// It performs no I/O beyond what FindProjectRoot needs.
type Resolver struct {
	globalDir      string
	managedDir     string
	userConfigFile string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGlobalDir overrides the user configuration directory.
func WithGlobalDir(dir string) Option {
	return func(r *Resolver) {
		if dir != "" {
			r.globalDir = dir
		}
	}
}

// WithManagedDir overrides the organization-managed configuration directory.
func WithManagedDir(dir string) Option {
	return func(r *Resolver) {
		if dir != "" {
			r.managedDir = dir
		}
	}
}

// WithUserConfigFile overrides the user client config file that carries
// user-level and per-project MCP servers.
func WithUserConfigFile(path string) Option {
	return func(r *Resolver) {
		if path != "" {
			r.userConfigFile = path
		}
	}
}

// NewResolver creates a Resolver using platform defaults for anything not
// overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		globalDir:      DefaultGlobalDir(),
		managedDir:     DefaultManagedDir(),
		userConfigFile: DefaultUserConfigFile(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// DefaultGlobalDir returns $CLAUDE_CONFIG_DIR, or ~/.claude.
func DefaultGlobalDir() string {
	if dir := os.Getenv("CLAUDE_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ClaudeDirName)
}

// DefaultUserConfigFile returns the user client config file. It sits inside
// $CLAUDE_CONFIG_DIR when that is set, otherwise in the home directory.
func DefaultUserConfigFile() string {
	if dir := os.Getenv("CLAUDE_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, UserConfigFileName)
	}
	return filepath.Join(homeDir(), UserConfigFileName)
}

// DefaultManagedDir returns the OS-specific managed policy directory.
func DefaultManagedDir() string {
	switch runtime.GOOS {
	case "darwin":
		return "/Library/Application Support/ClaudeCode"
	case "windows":
		if pd := os.Getenv("ProgramData"); pd != "" {
			return filepath.Join(pd, "ClaudeCode")
		}
		return `C:\ProgramData\ClaudeCode`
	default:
		return "/etc/claude-code"
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback - should rarely happen
		return os.TempDir()
	}
	return home
}

// GlobalDir returns the user configuration directory.
func (r *Resolver) GlobalDir() string { return r.globalDir }

// ManagedDir returns the managed policy directory.
func (r *Resolver) ManagedDir() string { return r.managedDir }

// UserConfigFile returns the user client config file path.
func (r *Resolver) UserConfigFile() string { return r.userConfigFile }

// SettingsLocations returns the settings files for project in merge order.
// Later entries override earlier ones.
func (r *Resolver) SettingsLocations(project string) []Location {
	claudeDir := filepath.Join(project, ClaudeDirName)
	return []Location{
		{Path: filepath.Join(r.globalDir, SettingsFile), Scope: scope.Global, Source: scope.SourceGlobal},
		{Path: filepath.Join(claudeDir, SettingsFile), Scope: scope.Project, Source: scope.SourceProject},
		{Path: filepath.Join(claudeDir, LocalSettingsFile), Scope: scope.Local, Source: scope.SourceProject},
		{Path: filepath.Join(r.managedDir, ManagedSettingsFile), Scope: scope.Managed, Source: scope.SourceGlobal},
	}
}

// McpLocations returns the three MCP manifests: project .mcp.json, the user
// client config, and the managed manifest. The user client config also holds
// per-project servers, which scanners attribute to the Local scope.
func (r *Resolver) McpLocations(project string) []Location {
	return []Location{
		{Path: filepath.Join(project, ProjectMcpFile), Scope: scope.Project, Source: scope.SourceProject},
		{Path: r.userConfigFile, Scope: scope.Global, Source: scope.SourceGlobal},
		{Path: filepath.Join(r.managedDir, ManagedMcpFile), Scope: scope.Managed, Source: scope.SourceGlobal},
	}
}

// AgentDirs returns the project and global agent directories.
func (r *Resolver) AgentDirs(project string) []Location {
	return []Location{
		{Path: filepath.Join(project, ClaudeDirName, AgentsDirName), Scope: scope.Project, Source: scope.SourceProject},
		{Path: filepath.Join(r.globalDir, AgentsDirName), Scope: scope.Global, Source: scope.SourceGlobal},
	}
}

// RuleDirs returns the project and global rule directories.
func (r *Resolver) RuleDirs(project string) []Location {
	return []Location{
		{Path: filepath.Join(project, ClaudeDirName, RulesDirName), Scope: scope.Project, Source: scope.SourceProject},
		{Path: filepath.Join(r.globalDir, RulesDirName), Scope: scope.Global, Source: scope.SourceGlobal},
	}
}

// KeybindingsFile returns the single global keybindings file.
func (r *Resolver) KeybindingsFile() Location {
	return Location{Path: filepath.Join(r.globalDir, KeybindingsFileName), Scope: scope.Global, Source: scope.SourceGlobal}
}

// MemoryDir returns the per-project memory directory kept under the global
// directory. Memory notes are private to the user and the project.
func (r *Resolver) MemoryDir(project string) Location {
	return Location{
		Path:   filepath.Join(r.globalDir, ProjectsDirName, EncodeProjectPath(project), MemoryDirName),
		Scope:  scope.Local,
		Source: scope.SourceGlobal,
	}
}

// InstalledPluginsFile returns the plugin registry path.
func (r *Resolver) InstalledPluginsFile() string {
	return filepath.Join(r.globalDir, PluginsDirName, InstalledPluginsFile)
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// EncodeProjectPath flattens an absolute project path into the directory
// name used under <global>/projects.
func EncodeProjectPath(project string) string {
	return unsafePathChars.ReplaceAllString(filepath.Clean(project), "-")
}
