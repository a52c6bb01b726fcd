// Package config loads the engine's own configuration: where to look for
// configuration directories, how to watch them, and how to log.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	cserrors "github.com/Aman-CERP/confscope/internal/errors"
)

// CurrentVersion is the config file schema version.
const CurrentVersion = 1

// Config represents the complete confscope configuration.
type Config struct {
	Version int         `yaml:"version" json:"version"`
	Paths   PathsConfig `yaml:"paths" json:"paths"`
	Watch   WatchConfig `yaml:"watch" json:"watch"`
	Log     LogConfig   `yaml:"log" json:"log"`
}

// PathsConfig overrides the default configuration locations. Empty values
// keep the platform defaults. A leading "~/" expands to the home directory.
type PathsConfig struct {
	// GlobalDir is the user-wide configuration directory (default: ~/.claude,
	// or $CLAUDE_CONFIG_DIR).
	GlobalDir string `yaml:"global_dir" json:"global_dir"`
	// ManagedDir holds administrator-managed policy files.
	ManagedDir string `yaml:"managed_dir" json:"managed_dir"`
	// UserConfigFile is the user client config holding user-level MCP servers.
	UserConfigFile string `yaml:"user_config_file" json:"user_config_file"`
}

// WatchConfig configures the change watcher.
type WatchConfig struct {
	// Debounce is the quiet period that ends a burst of changes (default: 300ms).
	Debounce string `yaml:"debounce" json:"debounce"`
	// PollInterval is used when fsnotify is unavailable (default: 2s).
	PollInterval string `yaml:"poll_interval" json:"poll_interval"`
	// ForcePolling disables fsnotify.
	ForcePolling bool `yaml:"force_polling" json:"force_polling"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level     string `yaml:"level" json:"level"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig returns a configuration with defaults applied.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Watch: WatchConfig{
			Debounce:     "300ms",
			PollInterval: "2s",
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/confscope/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/confscope/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "confscope", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback - should rarely happen
		return filepath.Join(os.TempDir(), ".config", "confscope", "config.yaml")
	}
	return filepath.Join(home, ".config", "confscope", "config.yaml")
}

// Load loads configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (GetUserConfigPath)
//  3. Environment variables (CONFSCOPE_*)
func Load() (*Config, error) {
	return LoadFile(GetUserConfigPath())
}

// LoadFile is Load with an explicit config file path. A missing file is
// not an error.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()

	if _, err := os.Stat(path); err == nil {
		if err := cfg.loadYAML(path); err != nil {
			return nil, cserrors.ConfigError(err.Error(), err).
				WithDetail("path", path)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, cserrors.ConfigError("invalid configuration: "+err.Error(), err).
			WithDetail("path", path).
			WithSuggestion("Fix the value in " + path + " or the matching CONFSCOPE_* variable")
	}
	return cfg, nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith copies non-zero values from other.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Paths.GlobalDir != "" {
		c.Paths.GlobalDir = other.Paths.GlobalDir
	}
	if other.Paths.ManagedDir != "" {
		c.Paths.ManagedDir = other.Paths.ManagedDir
	}
	if other.Paths.UserConfigFile != "" {
		c.Paths.UserConfigFile = other.Paths.UserConfigFile
	}

	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Watch.PollInterval != "" {
		c.Watch.PollInterval = other.Watch.PollInterval
	}
	if other.Watch.ForcePolling {
		c.Watch.ForcePolling = true
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.MaxSizeMB != 0 {
		c.Log.MaxSizeMB = other.Log.MaxSizeMB
	}
	if other.Log.MaxFiles != 0 {
		c.Log.MaxFiles = other.Log.MaxFiles
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CONFSCOPE_GLOBAL_DIR"); v != "" {
		c.Paths.GlobalDir = v
	}
	if v := os.Getenv("CONFSCOPE_MANAGED_DIR"); v != "" {
		c.Paths.ManagedDir = v
	}
	if v := os.Getenv("CONFSCOPE_USER_CONFIG_FILE"); v != "" {
		c.Paths.UserConfigFile = v
	}
	if v := os.Getenv("CONFSCOPE_WATCH_DEBOUNCE"); v != "" {
		c.Watch.Debounce = v
	}
	if v := os.Getenv("CONFSCOPE_FORCE_POLLING"); v != "" {
		c.Watch.ForcePolling = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("CONFSCOPE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Version > CurrentVersion {
		return fmt.Errorf("unsupported config version %d (max %d)", c.Version, CurrentVersion)
	}

	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d <= 0 {
		return fmt.Errorf("watch.debounce must be a positive duration, got %q", c.Watch.Debounce)
	}
	if d, err := time.ParseDuration(c.Watch.PollInterval); err != nil || d <= 0 {
		return fmt.Errorf("watch.poll_interval must be a positive duration, got %q", c.Watch.PollInterval)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxFiles < 0 {
		return fmt.Errorf("log.max_size_mb and log.max_files must be non-negative")
	}
	return nil
}

// DebounceWindow returns the parsed watch debounce. Call after Validate.
func (c *Config) DebounceWindow() time.Duration {
	d, _ := time.ParseDuration(c.Watch.Debounce)
	return d
}

// PollInterval returns the parsed polling interval. Call after Validate.
func (c *Config) PollInterval() time.Duration {
	d, _ := time.ParseDuration(c.Watch.PollInterval)
	return d
}

// GlobalDir returns the configured global directory with "~" expanded, or
// "" to keep the default.
func (c *Config) GlobalDir() string { return ExpandHome(c.Paths.GlobalDir) }

// ManagedDir returns the configured managed directory with "~" expanded.
func (c *Config) ManagedDir() string { return ExpandHome(c.Paths.ManagedDir) }

// UserConfigFile returns the configured user client config path with "~" expanded.
func (c *Config) UserConfigFile() string { return ExpandHome(c.Paths.UserConfigFile) }

// ExpandHome replaces a leading "~" path element with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
