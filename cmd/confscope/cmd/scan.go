package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/confscope/internal/engine"
	cserrors "github.com/Aman-CERP/confscope/internal/errors"
	"github.com/Aman-CERP/confscope/internal/output"
)

func newScanCmd(a *app) *cobra.Command {
	var surfaceName string
	var allowGlobalWrites bool
	var exact bool
	var compact bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Print the resolved configuration snapshot",
		Long: `Scan every configuration surface of a project and print the snapshot as
JSON. Each value carries its scope, source file and whether it may be edited.

The path defaults to the current directory and is resolved to its project
root (enclosing git worktree or .claude directory) unless --exact is set.`,
		Example: `  # Full snapshot of the current project
  confscope scan

  # Only MCP servers, treating global entries as editable
  confscope scan --surface mcp --allow-global-writes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			e := a.newEngine(engine.WithAllowGlobalWrites(allowGlobalWrites))
			if !exact {
				path = e.ProjectRoot(path)
			}

			if surfaceName != "" && !validSurface(surfaceName) {
				return cserrors.New(cserrors.ErrCodeUnknownSurface, "unknown surface: "+surfaceName, nil).
					WithSuggestion("Use one of: " + strings.Join(engine.SurfaceNames(), ", "))
			}

			snap, err := e.ScanConfig(cmd.Context(), path)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if compact {
				out.SetIndent(false)
			}
			if surfaceName == "" {
				return out.JSON(snap)
			}
			part, _ := snap.Surface(surfaceName)
			return out.JSON(part)
		},
	}

	cmd.Flags().StringVar(&surfaceName, "surface", "", "Print only one surface ("+strings.Join(engine.SurfaceNames(), ", ")+")")
	cmd.Flags().BoolVar(&allowGlobalWrites, "allow-global-writes", false, "Mark global and managed entries as editable")
	cmd.Flags().BoolVar(&exact, "exact", false, "Use the path as given instead of its project root")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print compact JSON even on a terminal")

	return cmd
}

func validSurface(name string) bool {
	for _, n := range engine.SurfaceNames() {
		if n == name {
			return true
		}
	}
	return false
}
