package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/confscope/internal/config"
	cserrors "github.com/Aman-CERP/confscope/internal/errors"
	"github.com/Aman-CERP/confscope/internal/locate"
	"github.com/Aman-CERP/confscope/internal/plugin"
	"github.com/Aman-CERP/confscope/internal/scope"
	"github.com/Aman-CERP/confscope/internal/surface"
	"github.com/Aman-CERP/confscope/internal/watcher"
)

// Engine resolves configuration surfaces for projects.
type Engine struct {
	resolver   *locate.Resolver
	gate       *scope.Gate
	discoverer plugin.Discoverer
	watchOpts  watcher.Options
	watcher    *watcher.ConfigWatcher
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolver sets the location resolver.
func WithResolver(r *locate.Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithDiscoverer replaces the default file-based plugin discoverer.
func WithDiscoverer(d plugin.Discoverer) Option {
	return func(e *Engine) {
		e.discoverer = d
	}
}

// WithWatchOptions configures the change watcher.
func WithWatchOptions(opts watcher.Options) Option {
	return func(e *Engine) {
		e.watchOpts = opts
	}
}

// WithAllowGlobalWrites sets the initial state of the write gate.
func WithAllowGlobalWrites(enabled bool) Option {
	return func(e *Engine) {
		e.gate.Set(enabled)
	}
}

// WithClock overrides the time source used for ScannedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// OptionsFromConfig translates the engine configuration into options.
func OptionsFromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}
	resolver := locate.NewResolver(
		locate.WithGlobalDir(cfg.GlobalDir()),
		locate.WithManagedDir(cfg.ManagedDir()),
		locate.WithUserConfigFile(cfg.UserConfigFile()),
	)
	return []Option{
		WithResolver(resolver),
		WithWatchOptions(watcher.Options{
			DebounceWindow: cfg.DebounceWindow(),
			PollInterval:   cfg.PollInterval(),
			ForcePolling:   cfg.Watch.ForcePolling,
		}),
	}
}

// New creates an engine. The write gate starts closed unless
// WithAllowGlobalWrites says otherwise.
func New(opts ...Option) *Engine {
	e := &Engine{
		resolver: locate.NewResolver(),
		gate:     scope.NewGate(false),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.discoverer == nil {
		e.discoverer = plugin.NewFileDiscoverer(e.resolver)
	}
	e.watcher = watcher.New(e.resolver, e.watchOpts)
	return e
}

// Resolver returns the engine's location resolver.
func (e *Engine) Resolver() *locate.Resolver { return e.resolver }

// ProjectRoot resolves the project that dir belongs to.
func (e *Engine) ProjectRoot(dir string) string {
	return e.resolver.ProjectRoot(dir)
}

// AllowGlobalWrites reports whether global and managed entries are editable.
func (e *Engine) AllowGlobalWrites() bool { return e.gate.Get() }

// SetAllowGlobalWrites changes the write gate. Later scans observe the new
// value; snapshots already returned are unchanged.
func (e *Engine) SetAllowGlobalWrites(enabled bool) { e.gate.Set(enabled) }

// ScanConfig reads every surface for projectPath. Absent and malformed files
// contribute nothing. The call fails only when a scanner panics or ctx is
// done.
func (e *Engine) ScanConfig(ctx context.Context, projectPath string) (*Snapshot, error) {
	in, err := e.input(ctx, projectPath)
	if err != nil {
		return nil, err
	}

	plugins := e.plugins(ctx, in.ProjectPath)
	agentDirs := plugin.AgentLocations(plugins)
	manifests := plugin.McpLocations(plugins)

	snap := &Snapshot{
		ProjectPath:       in.ProjectPath,
		ScannedAt:         e.now(),
		AllowGlobalWrites: e.gate.Get(),
		Plugins:           plugins,
	}

	err = runScanners(ctx, []namedScan{
		// Settings files are read once and shared by the derived surfaces.
		{SurfaceSettings, func() {
			files := surface.LoadSettingsFiles(in)
			snap.Settings = surface.SettingsFromFiles(in, files)
			snap.Permissions = surface.PermissionsFromFiles(in.Gate, files)
			snap.Sandbox = surface.SandboxFromFiles(in.Gate, files)
			snap.Hooks = surface.HooksFromFiles(in.Gate, files)
		}},
		{SurfaceMcp, func() { snap.Mcp = surface.ScanMcp(in, manifests) }},
		{SurfaceAgents, func() { snap.Agents = surface.ScanAgents(in, agentDirs) }},
		{SurfaceRules, func() { snap.Rules = surface.ScanRules(in) }},
		{SurfaceKeybindings, func() { snap.Keybindings = surface.ScanKeybindings(in) }},
		{SurfaceMemory, func() { snap.Memory = surface.ScanMemory(in) }},
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("config scanned",
		slog.String("project", snap.ProjectPath),
		slog.Int("plugins", len(plugins)),
		slog.Int("settings_files", len(snap.Settings.Files)),
		slog.Int("mcp_servers", len(snap.Mcp.Servers)),
		slog.Int("agents", len(snap.Agents.Agents)),
		slog.Int("rules", len(snap.Rules.Rules)))
	return snap, nil
}

// ScanSettings reads the settings surface.
func (e *Engine) ScanSettings(ctx context.Context, projectPath string) (surface.SettingsSurface, error) {
	return scanOne(ctx, e, projectPath, SurfaceSettings, surface.ScanSettings)
}

// ScanPermissions reads the permissions surface.
func (e *Engine) ScanPermissions(ctx context.Context, projectPath string) (surface.PermissionsSurface, error) {
	return scanOne(ctx, e, projectPath, SurfacePermissions, surface.ScanPermissions)
}

// ScanSandbox reads the sandbox surface.
func (e *Engine) ScanSandbox(ctx context.Context, projectPath string) (surface.SandboxSurface, error) {
	return scanOne(ctx, e, projectPath, SurfaceSandbox, surface.ScanSandbox)
}

// ScanHooks reads the hooks surface.
func (e *Engine) ScanHooks(ctx context.Context, projectPath string) (surface.HooksSurface, error) {
	return scanOne(ctx, e, projectPath, SurfaceHooks, surface.ScanHooks)
}

// ScanMcp reads the MCP surface, including enabled plugin manifests.
func (e *Engine) ScanMcp(ctx context.Context, projectPath string) (surface.McpSurface, error) {
	return scanOne(ctx, e, projectPath, SurfaceMcp, func(in surface.Input) surface.McpSurface {
		return surface.ScanMcp(in, plugin.McpLocations(e.plugins(ctx, in.ProjectPath)))
	})
}

// ScanAgents reads the agents surface, including enabled plugin agents.
func (e *Engine) ScanAgents(ctx context.Context, projectPath string) (surface.AgentsSurface, error) {
	return scanOne(ctx, e, projectPath, SurfaceAgents, func(in surface.Input) surface.AgentsSurface {
		return surface.ScanAgents(in, plugin.AgentLocations(e.plugins(ctx, in.ProjectPath)))
	})
}

// ScanRules reads the rules surface.
func (e *Engine) ScanRules(ctx context.Context, projectPath string) (surface.RulesSurface, error) {
	return scanOne(ctx, e, projectPath, SurfaceRules, surface.ScanRules)
}

// ScanKeybindings reads the keybindings surface.
func (e *Engine) ScanKeybindings(ctx context.Context, projectPath string) (surface.KeybindingsSurface, error) {
	return scanOne(ctx, e, projectPath, SurfaceKeybindings, surface.ScanKeybindings)
}

// ScanMemory reads the memory surface.
func (e *Engine) ScanMemory(ctx context.Context, projectPath string) (surface.MemorySurface, error) {
	return scanOne(ctx, e, projectPath, SurfaceMemory, surface.ScanMemory)
}

func scanOne[T any](ctx context.Context, e *Engine, projectPath, name string, scan func(surface.Input) T) (T, error) {
	var out T
	in, err := e.input(ctx, projectPath)
	if err != nil {
		return out, err
	}
	err = runScanners(ctx, []namedScan{{name, func() { out = scan(in) }}})
	return out, err
}

func (e *Engine) input(ctx context.Context, projectPath string) (surface.Input, error) {
	if projectPath == "" {
		return surface.Input{}, cserrors.New(cserrors.ErrCodeInvalidPath, "project path is empty", nil)
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return surface.Input{}, cserrors.New(cserrors.ErrCodeInvalidPath, "cannot resolve project path", err).
			WithDetail("path", projectPath)
	}
	if err := ctx.Err(); err != nil {
		return surface.Input{}, err
	}
	return surface.Input{Resolver: e.resolver, Gate: e.gate, ProjectPath: abs}, nil
}

// plugins returns the enabled plugins for a project. Discovery failure is
// logged and treated as no plugins.
func (e *Engine) plugins(ctx context.Context, projectPath string) []plugin.Plugin {
	found, err := e.discoverer.Discover(ctx, projectPath)
	if err != nil {
		if ctx.Err() == nil {
			werr := cserrors.Wrap(cserrors.ErrCodeDiscoveryFailed, err)
			slog.Warn("plugin discovery failed, continuing without plugins",
				slog.String("project", projectPath),
				slog.Any("error", cserrors.FormatForLog(werr)))
		}
		return []plugin.Plugin{}
	}
	return plugin.Enabled(found)
}

type namedScan struct {
	name string
	run  func()
}

// runScanners runs scans concurrently. A panicking scan becomes a
// ErrCodeScanFailed error naming its surface; ctx cancellation is reported
// after all scans return.
func runScanners(ctx context.Context, scans []namedScan) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range scans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return guard(s)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func guard(s namedScan) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scanner panicked",
				slog.String("surface", s.name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = cserrors.New(cserrors.ErrCodeScanFailed, fmt.Sprintf("%s scanner failed", s.name), fmt.Errorf("panic: %v", r)).
				WithDetail("surface", s.name)
		}
	}()
	s.run()
	return nil
}
