package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/confscope/internal/locate"
	"github.com/Aman-CERP/confscope/internal/output"
)

// pathsReport lists every location the engine reads for one project.
type pathsReport struct {
	ProjectRoot      string            `json:"projectRoot"`
	Worktrees        []string          `json:"worktrees"`
	GlobalDir        string            `json:"globalDir"`
	ManagedDir       string            `json:"managedDir"`
	UserConfigFile   string            `json:"userConfigFile"`
	Settings         []locate.Location `json:"settings"`
	Mcp              []locate.Location `json:"mcp"`
	Agents           []locate.Location `json:"agents"`
	Rules            []locate.Location `json:"rules"`
	Keybindings      locate.Location   `json:"keybindings"`
	Memory           locate.Location   `json:"memory"`
	InstalledPlugins string            `json:"installedPlugins"`
}

func newPathsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths [path]",
		Short: "Print the configuration locations for a project",
		Long: `Print the project root, its worktrees and every candidate file or
directory that a scan reads, in precedence order. Locations are listed
whether or not they exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			r := a.newEngine().Resolver()
			root := r.ProjectRoot(path)
			worktrees, err := locate.Worktrees(cmd.Context(), root)
			if err != nil {
				slog.Debug("worktree listing failed", slog.String("root", root), slog.String("error", err.Error()))
				worktrees = []string{root}
			}

			report := pathsReport{
				ProjectRoot:      root,
				Worktrees:        worktrees,
				GlobalDir:        r.GlobalDir(),
				ManagedDir:       r.ManagedDir(),
				UserConfigFile:   r.UserConfigFile(),
				Settings:         r.SettingsLocations(root),
				Mcp:              r.McpLocations(root),
				Agents:           r.AgentDirs(root),
				Rules:            r.RuleDirs(root),
				Keybindings:      r.KeybindingsFile(),
				Memory:           r.MemoryDir(root),
				InstalledPlugins: r.InstalledPluginsFile(),
			}
			return output.New(cmd.OutOrStdout()).JSON(report)
		},
	}
	return cmd
}
