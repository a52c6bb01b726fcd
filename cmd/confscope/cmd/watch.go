package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/confscope/internal/engine"
	cserrors "github.com/Aman-CERP/confscope/internal/errors"
	"github.com/Aman-CERP/confscope/internal/output"
	"github.com/Aman-CERP/confscope/internal/watcher"
)

// watchRecord is one line of `confscope watch` output. Error holds the
// structured form of a failed rescan.
type watchRecord struct {
	Event    watcher.ChangeEvent `json:"event"`
	Project  string              `json:"project,omitempty"`
	Snapshot *engine.Snapshot    `json:"snapshot,omitempty"`
	Error    json.RawMessage     `json:"error,omitempty"`
}

func newWatchCmd(a *app) *cobra.Command {
	var rescan bool

	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Stream configuration change events",
		Long: `Watch shared configuration and the given projects (default: the current
project) with their git worktrees. Each burst of changes is printed as one
JSON line. A global change has an empty projectPath.

With --scan each event is followed by a fresh snapshot of the affected
project, or of every watched project for global changes.

Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			e := a.newEngine()
			roots := make([]string, 0, len(args))
			for _, p := range args {
				if info, err := os.Stat(p); err != nil || !info.IsDir() {
					return cserrors.ValidationError("watch path is not a directory: "+p, err).
						WithDetail("path", p).
						WithSuggestion("Pass existing project directories")
				}
				roots = append(roots, e.ProjectRoot(p))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, e, roots, rescan)
		},
	}

	cmd.Flags().BoolVar(&rescan, "scan", false, "Print a snapshot after each change")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, e *engine.Engine, roots []string, rescan bool) error {
	out := output.New(cmd.OutOrStdout())
	status := output.New(cmd.ErrOrStderr())

	unsubscribe := e.OnConfigChange(func(ev watcher.ChangeEvent) {
		if !rescan {
			if err := out.JSONLine(watchRecord{Event: ev}); err != nil {
				slog.Warn("write failed", slog.String("error", err.Error()))
			}
			return
		}
		targets := []string{ev.ProjectPath}
		if ev.Global() {
			targets = roots
		}
		for _, project := range targets {
			rec := watchRecord{Event: ev, Project: project}
			snap, err := e.ScanConfig(ctx, project)
			if err != nil {
				rec.Error = rescanFailure(project, err)
			} else {
				rec.Snapshot = snap
			}
			if err := out.JSONLine(rec); err != nil {
				slog.Warn("write failed", slog.String("error", err.Error()))
			}
		}
	})
	defer unsubscribe()

	if err := e.StartWatcher(ctx, roots...); err != nil {
		return err
	}
	defer func() { _ = e.StopWatcher() }()

	status.Statusf("👀", "watching %d project(s) using %s", len(roots), e.WatcherType())
	for _, root := range e.WatchedRoots() {
		status.KeyValue("root", root)
	}
	if kind := e.WatcherType(); kind == "polling" {
		status.Warningf("%s source in use, changes appear after the next poll", kind)
	}
	<-ctx.Done()
	return nil
}

// rescanFailure logs a failed rescan and returns its JSON form. Fatal
// failures are logged as errors, everything else as a warning.
func rescanFailure(project string, err error) json.RawMessage {
	level := slog.LevelWarn
	if cserrors.IsFatal(err) {
		level = slog.LevelError
	}
	slog.Log(context.Background(), level, "rescan failed",
		slog.String("project", project),
		slog.Any("error", cserrors.FormatForLog(err)))

	data, jsonErr := cserrors.FormatJSON(err)
	if jsonErr != nil {
		return nil
	}
	return data
}
