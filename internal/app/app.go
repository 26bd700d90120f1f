// Package app implements the application layer for coman.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/coman/internal/adapters/detector"  //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/linear"    //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/tui"       //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/coman/internal/core/domain"
	"go.trai.ch/coman/internal/core/ports"
	"go.trai.ch/coman/internal/engine/reconciler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	specs        ports.SpecStore
	locks        ports.LockStore
	registry     ports.Registry
	backend      ports.Backend
	guard        ports.ProjectLocker
	catalog      ports.Catalog
	executor     ports.Executor
	logger       ports.Logger
	watchers     watcher.Factory

	stderr     io.Writer
	getwd      func() (string, error)
	getenv     func(string) string
	teaOptions []tea.ProgramOption
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	specs ports.SpecStore,
	locks ports.LockStore,
	registry ports.Registry,
	backend ports.Backend,
	guard ports.ProjectLocker,
	catalog ports.Catalog,
	executor ports.Executor,
	log ports.Logger,
	watchers watcher.Factory,
) *App {
	return &App{
		configLoader: loader,
		specs:        specs,
		locks:        locks,
		registry:     registry,
		backend:      backend,
		guard:        guard,
		catalog:      catalog,
		executor:     executor,
		logger:       log,
		watchers:     watchers,
		stderr:       os.Stderr,
		getwd:        os.Getwd,
		getenv:       os.Getenv,
	}
}

// WithWorkDir makes the App operate from dir instead of the process working
// directory. This is primarily used for testing.
func (a *App) WithWorkDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// WithStderr redirects progress output.
func (a *App) WithStderr(w io.Writer) *App {
	a.stderr = w
	return a
}

// WithTeaOptions adds bubbletea program options for the tui output mode.
// Tests use it to run the program without a terminal.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithGetenv replaces the environment lookup used for shell detection.
func (a *App) WithGetenv(getenv func(string) string) *App {
	a.getenv = getenv
	return a
}

// session is the per-invocation context: settings, the project and a
// reconciler reporting to the selected progress output.
type session struct {
	settings *domain.Settings
	project  *domain.Project
	rec      *reconciler.Reconciler
	stop     func()
}

// begin starts a session. With findProject the project root is searched
// upwards from the working directory; otherwise the working directory is
// the project.
func (a *App) begin(ctx context.Context, outputMode string, findProject bool) (*session, error) {
	settings, err := a.configLoader.Settings()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if j, ok := a.logger.(interface{ SetJSON(bool) }); ok && settings.JSON {
		j.SetJSON(true)
	}

	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine working directory")
	}
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine working directory")
	}
	if findProject {
		if dir, err = a.configLoader.FindProject(dir); err != nil {
			return nil, err
		}
	}

	tracer, stop := a.tracer(ctx, outputMode)
	return &session{
		settings: settings,
		project:  domain.NewProject(dir, settings.EnvsRoot, settings.Platform),
		rec: reconciler.New(
			a.specs, a.locks, a.registry, a.backend, a.guard, a.catalog, a.logger, tracer, settings.Jobs,
		),
		stop: stop,
	}, nil
}

// tracer selects the progress output. In progress mode spans are forwarded
// through OpenTelemetry to the linear renderer, in tui mode to the
// interactive step view; plain mode records nothing.
func (a *App) tracer(ctx context.Context, outputMode string) (ports.Tracer, func()) {
	var renderer ports.Renderer
	switch detector.ResolveMode(detector.DetectEnvironment(), outputMode) {
	case detector.ModeTUI:
		model := tui.NewModel(a.stderr)
		opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(a.stderr)}, a.teaOptions...)
		r := tui.NewRenderer(&model, opts...)
		if err := r.Start(ctx); err != nil {
			a.logger.Warn("interactive output unavailable: " + err.Error())
			return telemetry.NewNoOpTracer(), func() {}
		}
		renderer = r
	case detector.ModeProgress:
		renderer = linear.NewRenderer(a.stderr, a.stderr)
	default:
		return telemetry.NewNoOpTracer(), func() {}
	}

	bridge := telemetry.NewBridge(renderer)
	tp := setupOTel(bridge)
	tracer := telemetry.NewOTelTracer("coman").WithRenderer(renderer)
	return tracer, func() {
		_ = tp.Shutdown(context.Background())
		_ = renderer.Stop()
	}
}

// setupOTel configures the OpenTelemetry SDK with the renderer bridge.
func setupOTel(bridge *telemetry.Bridge) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
	return tp
}

// platformOrDefault parses name, falling back to the project's default
// platform. The project must be loaded.
func platformOrDefault(project *domain.Project, name string) (domain.Platform, error) {
	if name == "" {
		return reconciler.DefaultPlatform(project)
	}
	return domain.ParsePlatform(name)
}
