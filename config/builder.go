package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// LoaderBuilder assembles the standard source stack:
// <dir>/config.yaml (10), <dir>/<env>.yaml (20), <PREFIX>_* env vars (50)
// and bound flags (100).
type LoaderBuilder struct {
	configPath   string
	envPrefix    string
	env          string
	flags        *pflag.FlagSet
	flagBindings map[string]string
	extra        []ConfigSource
}

// NewLoaderBuilder creates an empty builder
func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{flagBindings: make(map[string]string)}
}

// WithConfigPath sets the directory holding config.yaml
func (b *LoaderBuilder) WithConfigPath(path string) *LoaderBuilder {
	b.configPath = path
	return b
}

// WithEnvPrefix enables the env source
func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// WithEnv selects the environment file; default GetEnv()
func (b *LoaderBuilder) WithEnv(env string) *LoaderBuilder {
	b.env = env
	return b
}

// WithFlags enables the flag source. bindings maps flag names to config keys.
func (b *LoaderBuilder) WithFlags(fs *pflag.FlagSet, bindings map[string]string) *LoaderBuilder {
	b.flags = fs
	for flagName, key := range bindings {
		b.flagBindings[flagName] = key
	}
	return b
}

// WithSource adds a custom source
func (b *LoaderBuilder) WithSource(src ConfigSource) *LoaderBuilder {
	b.extra = append(b.extra, src)
	return b
}

// Build creates and loads the loader
func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	if b.configPath != "" {
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, "config.yaml"), PriorityFile))

		env := b.env
		if env == "" {
			env = GetEnv()
		}
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, env+".yaml"), PriorityEnvFile))
	}

	if b.envPrefix != "" {
		loader.AddSource(NewEnvSource(b.envPrefix, PriorityEnv))
	}

	if b.flags != nil && len(b.flagBindings) > 0 {
		src := NewFlagSource(b.flags, PriorityFlag)
		for flagName, key := range b.flagBindings {
			src.Bind(flagName, key)
		}
		loader.AddSource(src)
	}

	for _, src := range b.extra {
		loader.AddSource(src)
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetEnv returns APP_ENV, then ENV, then "dev"
func GetEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}
