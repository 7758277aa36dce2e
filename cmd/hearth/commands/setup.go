package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/hearthd/hearth/pkg/backends"
	"github.com/hearthd/hearth/pkg/config"
	"github.com/hearthd/hearth/pkg/engine"
	"github.com/hearthd/hearth/pkg/manifest"
	"github.com/hearthd/hearth/pkg/stores"
	"github.com/hearthd/hearth/pkg/telemetry"
)

// runtime bundles everything a command needs to run the pipeline. Commands
// request only the pieces they use via runtimeOptions.
type runtime struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
	store   *stores.SQLiteStore

	manifest *manifest.Manifest
	resolved *manifest.Resolved
	model    *engine.Model
	backends engine.Backends
}

type runtimeOptions struct {
	// loadManifest parses and resolves the manifest into a model.
	loadManifest bool

	// openBackends wires the host backends (pacman, symlinks, systemd).
	openBackends bool

	// openStore opens the run-history database and applies migrations.
	openStore bool
}

func newRuntime(ctx context.Context, version string, opts runtimeOptions) (*runtime, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	tcfg := cfg.Telemetry(version)
	logger, err := telemetry.NewLogger(tcfg.Logging)
	if err != nil {
		return nil, err
	}
	metrics, err := telemetry.NewMetrics(tcfg.Metrics)
	if err != nil {
		return nil, err
	}
	tracer, err := telemetry.NewTracer(tcfg.Tracing, tcfg.ServiceName, tcfg.ServiceVersion)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}

	if opts.loadManifest {
		if err := rt.loadManifest(); err != nil {
			return nil, err
		}
	}
	if opts.openBackends {
		if err := rt.openBackends(); err != nil {
			return nil, err
		}
	}
	if opts.openStore {
		if err := rt.openStore(ctx); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *runtime) loadManifest() error {
	path := manifestPath
	if path == "" {
		path = rt.cfg.Manifest
	}

	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to determine hostname: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}

	resolved := m.Resolve(hostname, home)
	model, err := engine.NewModel(resolved.Entries)
	if err != nil {
		return err
	}

	rt.manifest = m
	rt.resolved = resolved
	rt.model = model
	return nil
}

// openBackends builds the package, file, and service backends. AUR support
// is wired only when the resolved manifest routes packages through it.
func (rt *runtime) openBackends() error {
	pacman := backends.NewPacman(rt.cfg.Backends.PacmanBin)

	var pkgs engine.PackageBackend = pacman
	if rt.resolved != nil && len(rt.resolved.AURManaged) > 0 {
		if rt.cfg.Backends.AURHelper == "none" {
			return fmt.Errorf("manifest declares AUR packages but AUR support is disabled in config")
		}
		aur, err := backends.NewAUR(rt.cfg.Backends.AURHelper, rt.cfg.Backends.PacmanBin)
		if err != nil {
			return err
		}
		pkgs = backends.NewLayered(pacman, aur, rt.resolved.AURManaged)
	}

	rt.backends = engine.Backends{
		Packages: pkgs,
		Files:    backends.NewSymlinks(),
		Services: backends.NewSystemd(rt.cfg.Backends.SystemctlBin),
	}
	return nil
}

func (rt *runtime) openStore(ctx context.Context) error {
	store, err := stores.NewSQLiteStore(rt.cfg.StatePath)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return err
	}
	rt.store = store
	return nil
}

// reconciler wires the engine over the runtime's backends. The store is
// passed as the run recorder when open; runs are not recorded otherwise.
func (rt *runtime) reconciler() *engine.Reconciler {
	var recorder engine.RunRecorder
	if rt.store != nil {
		recorder = rt.store
	}
	return engine.NewReconciler(rt.backends, rt.logger, rt.metrics, rt.tracer, recorder)
}

func (rt *runtime) close(ctx context.Context) {
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			rt.logger.Warn().Err(err).Msg("failed to close state database")
		}
	}
	if err := rt.tracer.Shutdown(ctx); err != nil {
		rt.logger.Warn().Err(err).Msg("failed to shut down tracer")
	}
}
