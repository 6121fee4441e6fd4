package config

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/pflag"
)

// ProvideLoaderOptions configures ProvideLoader
type ProvideLoaderOptions struct {
	ConfigPath   string // directory holding config.yaml
	ConfigPrefix string // env variable prefix
	Env          string // environment file name, default GetEnv()
	Flags        *pflag.FlagSet
	FlagBindings map[string]string
}

// ProvideLoader builds the loader on first invoke. The loader has no
// dependencies.
//
//	do.Provide(injector, config.ProvideLoader(config.ProvideLoaderOptions{
//	    ConfigPath:   "./configs",
//	    ConfigPrefix: "SERVICECTL",
//	}))
//	loader := do.MustInvoke[*config.Loader](injector)
func ProvideLoader(opts ProvideLoaderOptions) func(do.Injector) (*Loader, error) {
	return func(i do.Injector) (*Loader, error) {
		loader, err := NewLoaderBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnvPrefix(opts.ConfigPrefix).
			WithEnv(opts.Env).
			WithFlags(opts.Flags, opts.FlagBindings).
			Build()
		if err != nil {
			return nil, fmt.Errorf("config loader build failed: %w", err)
		}
		return loader, nil
	}
}

// ProvideLoaderValue provides an already built loader
func ProvideLoaderValue(loader *Loader) func(do.Injector) (*Loader, error) {
	return func(i do.Injector) (*Loader, error) {
		return loader, nil
	}
}
