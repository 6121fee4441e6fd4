// Package di wires the configuration loader, the logger manager, telemetry
// and the service strategies into a samber/do injector.
//
//	injector := do.New()
//	di.RegisterCoreProviders(injector, di.Options{
//	    Loader:  config.ProvideLoaderOptions{ConfigPath: "./configs"},
//	    Catalog: catalog,
//	})
//	if _, err := di.InstallFacade[*registry.ConfigStrategy](injector); err != nil {
//	    return err
//	}
//	defer injector.Shutdown()
package di

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-servicemgr/config"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/KOMKZ/go-yogan-servicemgr/manager"
	"github.com/KOMKZ/go-yogan-servicemgr/registry"
	"github.com/KOMKZ/go-yogan-servicemgr/telemetry"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// LoggerSection is the configuration key of logger.ManagerConfig
const LoggerSection = "logger"

// Options configures RegisterCoreProviders
type Options struct {
	// Loader builds the configuration loader; ignored when LoaderValue is set
	Loader      config.ProvideLoaderOptions
	LoaderValue *config.Loader

	// Catalog maps service types to providers for the config strategy
	Catalog *registry.Catalog
	// Section holding service definitions, default registry.DefaultSection
	Section string

	// StrategyOptions are passed to both strategy constructors
	StrategyOptions []registry.Option
}

// RegisterCoreProviders registers lazy providers for *config.Loader,
// *logger.Manager, *telemetry.Manager, *registry.ConfigStrategy and
// *registry.RuntimeStrategy. Nothing is built until it is invoked. The
// strategies and the telemetry manager implement Shutdown(context.Context)
// error, so injector.Shutdown tears down active services first, then flushes
// telemetry, then closes the logger manager.
func RegisterCoreProviders(injector do.Injector, opts Options) {
	if opts.LoaderValue != nil {
		do.Provide(injector, config.ProvideLoaderValue(opts.LoaderValue))
	} else {
		do.Provide(injector, config.ProvideLoader(opts.Loader))
	}
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideTelemetry)
	do.Provide(injector, ProvideConfigStrategy(opts.Catalog, opts.Section, opts.StrategyOptions...))
	do.Provide(injector, ProvideRuntimeStrategy(opts.StrategyOptions...))
}

// ProvideLoggerManager reads the logger section and installs the result as
// the global logger manager
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	cfg := logger.DefaultManagerConfig()
	if loader.IsSet(LoggerSection) {
		if err := loader.UnmarshalKey(LoggerSection, &cfg); err != nil {
			return nil, fmt.Errorf("decode logger config: %w", err)
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}
	return logger.InitManager(cfg), nil
}

// ProvideTelemetry reads the telemetry section and starts the SDK providers
func ProvideTelemetry(i do.Injector) (*telemetry.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}

	cfg := telemetry.DefaultConfig()
	if loader.IsSet(telemetry.Section) {
		if err := loader.UnmarshalKey(telemetry.Section, &cfg); err != nil {
			return nil, fmt.Errorf("decode telemetry config: %w", err)
		}
	}
	tm := telemetry.NewManager(cfg, telemetry.WithLogger(mgr.GetLogger("telemetry")))
	if err := tm.Start(context.Background()); err != nil {
		return nil, err
	}
	return tm, nil
}

// ProvideConfigStrategy loads every service definition from the loader
func ProvideConfigStrategy(catalog *registry.Catalog, section string, opts ...registry.Option) func(do.Injector) (*registry.ConfigStrategy, error) {
	return func(i do.Injector) (*registry.ConfigStrategy, error) {
		loader, err := do.Invoke[*config.Loader](i)
		if err != nil {
			return nil, err
		}
		base, log, err := baseOptions(i, opts)
		if err != nil {
			return nil, err
		}
		s := registry.NewConfigStrategy(base...)

		var loadOpts []registry.LoadOption
		if section != "" {
			loadOpts = append(loadOpts, registry.WithSection(section))
		}
		n, err := s.LoadDefinitions(loader, catalog, loadOpts...)
		if err != nil {
			return nil, err
		}
		log.InfoCtx(context.Background(), "service definitions loaded",
			zap.Int("count", n), zap.Strings("files", loader.GetLoadedFiles()))
		return s, nil
	}
}

// ProvideRuntimeStrategy builds an empty runtime strategy
func ProvideRuntimeStrategy(opts ...registry.Option) func(do.Injector) (*registry.RuntimeStrategy, error) {
	return func(i do.Injector) (*registry.RuntimeStrategy, error) {
		base, _, err := baseOptions(i, opts)
		if err != nil {
			return nil, err
		}
		return registry.NewRuntimeStrategy(base...), nil
	}
}

// InstallFacade invokes strategy S and makes it the manager's default
func InstallFacade[S registry.Strategy](injector do.Injector) (S, error) {
	s, err := do.Invoke[S](injector)
	if err != nil {
		return s, err
	}
	if _, err := manager.SetDefaultStrategy(s); err != nil {
		return s, err
	}
	return s, nil
}

// baseOptions puts the injected logger and telemetry providers ahead of the
// caller's options, so an explicit option wins
func baseOptions(i do.Injector, opts []registry.Option) ([]registry.Option, *logger.CtxZapLogger, error) {
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, nil, err
	}
	tm, err := do.Invoke[*telemetry.Manager](i)
	if err != nil {
		return nil, nil, err
	}

	log := mgr.GetLogger("servicemgr")
	out := make([]registry.Option, 0, len(opts)+3)
	out = append(out,
		registry.WithLogger(log),
		registry.WithTracerProvider(tm.TracerProvider()),
		registry.WithMeterProvider(tm.MeterProvider()),
	)
	return append(out, opts...), log, nil
}
