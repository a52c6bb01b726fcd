// Package cmd provides the CLI commands for confscope.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/confscope/internal/config"
	"github.com/Aman-CERP/confscope/internal/engine"
	cserrors "github.com/Aman-CERP/confscope/internal/errors"
	"github.com/Aman-CERP/confscope/internal/logging"
	"github.com/Aman-CERP/confscope/pkg/version"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath     string
	debug          bool
	cfg            *config.Config
	loggingCleanup func()
}

// newEngine builds an engine from the loaded configuration.
func (a *app) newEngine(opts ...engine.Option) *engine.Engine {
	return engine.New(append(engine.OptionsFromConfig(a.cfg), opts...)...)
}

// NewRootCmd creates the root command for the confscope CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "confscope",
		Short: "Resolve layered assistant configuration with provenance",
		Long: `confscope reads every configuration surface of a project (settings,
permissions, sandbox, hooks, MCP servers, agents, rules, keybindings and
memory) from the managed, global, project and local scopes, and reports
each value together with the file and scope it came from.

Run 'confscope scan' in a project directory to print the full snapshot.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("confscope version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to ~/.confscope/logs/")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to confscope config file (default: ~/.config/confscope/config.yaml)")

	cmd.PersistentPreRunE = a.setup
	cmd.PersistentPostRunE = a.teardown

	cmd.AddCommand(newScanCmd(a))
	cmd.AddCommand(newPathsCmd(a))
	cmd.AddCommand(newWatchCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration and starts logging.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	var err error
	if a.configPath != "" {
		if _, statErr := os.Stat(a.configPath); statErr != nil {
			return cserrors.IOError("config file not found: "+a.configPath, statErr).
				WithDetail("path", a.configPath).
				WithSuggestion("Check the --config path or omit it to use " + config.GetUserConfigPath())
		}
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if !a.debug {
		logging.SetupStderr(a.cfg.Log.Level)
		return nil
	}

	logCfg := logging.DebugConfig()
	logCfg.MaxSizeMB = a.cfg.Log.MaxSizeMB
	logCfg.MaxFiles = a.cfg.Log.MaxFiles
	logCfg.WriteToStderr = false
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	a.loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("Debug logging enabled",
		slog.String("log_file", logCfg.FilePath),
		slog.String("version", version.Version))
	return nil
}

// teardown stops debug logging.
func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.loggingCleanup != nil {
		slog.Info("Debug logging stopped")
		a.loggingCleanup()
		a.loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		printError(os.Stderr, err, debug)
	}
	return err
}

// printError writes coded errors with their suggestion and code, adding
// details and the cause under --debug. Plain errors (flag and argument
// mistakes) are a single line.
func printError(w io.Writer, err error, debug bool) {
	if _, ok := cserrors.As(err); ok {
		_, _ = fmt.Fprintln(w, cserrors.FormatForUser(err, debug))
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}
