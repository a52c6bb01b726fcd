package locate

import "path/filepath"

// WatchDir is a directory a watcher should observe.
type WatchDir struct {
	// Path is the directory to observe.
	Path string
	// Recursive also observes every subdirectory.
	Recursive bool
	// Names restricts relevant events to these base names. Empty means any
	// entry in the directory is relevant.
	Names []string
}

// Relevant reports whether a change to the entry named base inside the
// directory matters for configuration.
func (w WatchDir) Relevant(base string) bool {
	if len(w.Names) == 0 {
		return true
	}
	for _, name := range w.Names {
		if name == base {
			return true
		}
	}
	return false
}

// GlobalWatchDirs returns the directories holding configuration shared by
// every project. The parents of the global and managed directories are
// included so that either directory appearing later is noticed.
func (r *Resolver) GlobalWatchDirs() []WatchDir {
	return []WatchDir{
		{Path: filepath.Dir(r.globalDir), Names: []string{filepath.Base(r.globalDir)}},
		{Path: r.globalDir, Names: []string{SettingsFile, KeybindingsFileName, AgentsDirName, RulesDirName, PluginsDirName, ProjectsDirName, UserConfigFileName}},
		{Path: filepath.Join(r.globalDir, AgentsDirName)},
		{Path: filepath.Join(r.globalDir, RulesDirName), Recursive: true},
		{Path: filepath.Join(r.globalDir, PluginsDirName), Names: []string{InstalledPluginsFile}},
		{Path: filepath.Dir(r.managedDir), Names: []string{filepath.Base(r.managedDir)}},
		{Path: r.managedDir, Names: []string{ManagedSettingsFile, ManagedMcpFile}},
		{Path: filepath.Dir(r.userConfigFile), Names: []string{filepath.Base(r.userConfigFile)}},
	}
}

// ProjectWatchDirs returns the directories holding configuration for a
// single project root or worktree, plus the chain leading to its memory
// directory under the global projects directory.
func (r *Resolver) ProjectWatchDirs(root string) []WatchDir {
	claudeDir := filepath.Join(root, ClaudeDirName)
	projectsDir := filepath.Join(r.globalDir, ProjectsDirName)
	encoded := EncodeProjectPath(root)
	return []WatchDir{
		{Path: projectsDir, Names: []string{encoded}},
		{Path: filepath.Join(projectsDir, encoded), Names: []string{MemoryDirName}},
		{Path: root, Names: []string{ProjectMcpFile, ClaudeDirName}},
		{Path: claudeDir, Names: []string{SettingsFile, LocalSettingsFile, AgentsDirName, RulesDirName}},
		{Path: filepath.Join(claudeDir, AgentsDirName)},
		{Path: filepath.Join(claudeDir, RulesDirName), Recursive: true},
		{Path: r.MemoryDir(root).Path},
	}
}
