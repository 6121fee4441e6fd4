// Package application hosts a config driven service strategy: it builds the
// injector, installs the strategy as the process default, resolves services
// and shuts everything down on a signal.
package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KOMKZ/go-yogan-servicemgr/config"
	"github.com/KOMKZ/go-yogan-servicemgr/di"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/KOMKZ/go-yogan-servicemgr/manager"
	"github.com/KOMKZ/go-yogan-servicemgr/registry"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// State of the application
type State int

const (
	StateInit State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Options configures New
type Options struct {
	Loader  config.ProvideLoaderOptions
	Catalog *registry.Catalog
	// Section holding service definitions, default registry.DefaultSection
	Section string
}

// App owns the injector and the installed ConfigStrategy
type App struct {
	injector *do.RootScope
	loader   *config.Loader
	strategy *registry.ConfigStrategy
	logger   *logger.CtxZapLogger
	cfg      AppConfig

	ctx    context.Context
	cancel context.CancelFunc
	state  State
	mu     sync.RWMutex
}

// New loads configuration, builds the strategy and installs it into the
// manager facade. Nothing is activated yet.
func New(opts Options) (*App, error) {
	injector := do.New()
	di.RegisterCoreProviders(injector, di.Options{
		Loader:  opts.Loader,
		Catalog: opts.Catalog,
		Section: opts.Section,
	})

	app, err := build(injector)
	if err != nil {
		_ = injector.Shutdown()
		return nil, err
	}
	return app, nil
}

func build(injector *do.RootScope) (*App, error) {
	loader, err := do.Invoke[*config.Loader](injector)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := loader.UnmarshalKey(AppSection, &cfg); err != nil {
		return nil, fmt.Errorf("decode app config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %w", err)
	}

	mgr, err := do.Invoke[*logger.Manager](injector)
	if err != nil {
		return nil, err
	}
	strategy, err := di.InstallFacade[*registry.ConfigStrategy](injector)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		injector: injector,
		loader:   loader,
		strategy: strategy,
		logger:   mgr.GetLogger(cfg.Name),
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
	}
	app.logger.DebugCtx(ctx, "application initialised",
		zap.Strings("services", strategy.DefinedNames()),
		zap.Strings("files", loader.GetLoadedFiles()))
	return app, nil
}

// Setup resolves every name in app.preload followed by names
func (a *App) Setup(ctx context.Context, names ...string) error {
	want := append(append([]string{}, a.cfg.Preload...), names...)
	for _, name := range want {
		if _, err := a.strategy.GetService(ctx, name); err != nil {
			a.logger.ErrorCtx(ctx, "service activation failed", zap.String("service", name), zap.Error(err))
			return err
		}
		a.logger.InfoCtx(ctx, "service ready", zap.String("service", name))
	}
	a.setState(StateRunning)
	return nil
}

// WaitShutdown blocks until SIGINT, SIGTERM, Cancel or ctx is done
func (a *App) WaitShutdown(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.InfoCtx(a.ctx, "shutdown signal received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.DebugCtx(context.Background(), "application cancelled")
	case <-ctx.Done():
		a.logger.DebugCtx(context.Background(), "caller context done")
	}
	a.cancel()
}

// Shutdown tears down active services, then the injector. The facade is reset
// only while it still holds this app's strategy. Only the strategy error is
// returned.
func (a *App) Shutdown() error {
	a.setState(StateStopping)
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	active := a.strategy.ActiveNames()
	err := a.strategy.Shutdown(ctx)
	if err != nil {
		a.logger.ErrorCtx(ctx, "service shutdown reported errors", zap.Error(err))
	}
	a.logger.InfoCtx(ctx, "application stopped", zap.Strings("services", active))

	_ = a.injector.Shutdown()
	if manager.Current() == registry.Strategy(a.strategy) {
		manager.Reset()
	}
	a.cancel()
	a.setState(StateStopped)
	return err
}

// Cancel unblocks WaitShutdown
func (a *App) Cancel() {
	a.cancel()
}

func (a *App) Strategy() *registry.ConfigStrategy {
	return a.strategy
}

func (a *App) Loader() *config.Loader {
	return a.loader
}

func (a *App) Logger() *logger.CtxZapLogger {
	return a.logger
}

func (a *App) Config() AppConfig {
	return a.cfg
}

// Injector exposes the do scope for extra providers
func (a *App) Injector() *do.RootScope {
	return a.injector
}

func (a *App) Context() context.Context {
	return a.ctx
}

func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *App) setState(s State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s
}

// ShutdownTimeout returns the configured bound
func (a *App) ShutdownTimeout() time.Duration {
	return a.cfg.ShutdownTimeout
}
