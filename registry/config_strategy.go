package registry

import (
	"context"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// DefaultSection is the configuration key LoadDefinitions reads
const DefaultSection = "services"

// ConfigStrategy is populated from configuration. A new ConfigStrategy is
// empty, so every lookup fails with ErrServiceNotDefined until
// LoadDefinitions is called. It is the facade's default strategy.
//
//	services:
//	  cache:
//	    type: cache           # catalog entry, defaults to the service name
//	    lifecycle: singleton  # lifecycle kind, defaults to singleton
//	    override: false
//	    config:
//	      ttl_seconds: 60
//
// Configuration keys pass through viper, which lower-cases them.
type ConfigStrategy struct {
	*BaseStrategy
}

// NewConfigStrategy creates an empty config strategy
func NewConfigStrategy(opts ...Option) *ConfigStrategy {
	return &ConfigStrategy{BaseStrategy: newBaseStrategy(opts...)}
}

// serviceEntry is one services.<name> block
type serviceEntry struct {
	Type      string                 `mapstructure:"type"`
	Lifecycle string                 `mapstructure:"lifecycle"`
	Override  bool                   `mapstructure:"override"`
	Config    map[string]interface{} `mapstructure:"config"`
}

func (e serviceEntry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Type, validation.Required),
	)
}

// LoadOption adjusts LoadDefinitions
type LoadOption func(*loadOptions)

type loadOptions struct {
	section string
}

// WithSection reads definitions from key instead of DefaultSection
func WithSection(key string) LoadOption {
	return func(o *loadOptions) {
		o.section = key
	}
}

// LoadDefinitions registers every service found under the services section.
// All entries are built and checked before any is registered, so a bad entry
// leaves the strategy as it was. Loaded entries follow the same override
// rules as programmatic registration. It returns the number of definitions
// registered.
func (s *ConfigStrategy) LoadDefinitions(src component.SectionGetter, catalog *Catalog, opts ...LoadOption) (int, error) {
	o := loadOptions{section: DefaultSection}
	for _, opt := range opts {
		opt(&o)
	}
	if catalog == nil {
		catalog = NewCatalog()
	}
	ctx := context.Background()

	raw := src.Get(o.section)
	if raw == nil {
		s.logger.DebugCtx(ctx, "no service definitions configured", zap.String("section", o.section))
		return 0, nil
	}
	entries, err := cast.ToStringMapE(raw)
	if err != nil {
		return 0, ErrInvalidDefinition.WithMsgf("configuration section %q is not a map", o.section).Wrap(err)
	}

	defs := make([]*Definition, 0, len(entries))
	for _, name := range sortedKeys(entries) {
		def, err := buildDefinition(name, entries[name], catalog)
		if err != nil {
			return 0, err
		}
		if err := s.checkRegistration(def); err != nil {
			return 0, err
		}
		defs = append(defs, def)
	}

	for _, def := range defs {
		if err := s.registerService(ctx, def); err != nil {
			return 0, err
		}
	}

	s.logger.InfoCtx(ctx, "service definitions loaded",
		zap.String("section", o.section), zap.Int("count", len(defs)))
	return len(defs), nil
}

func buildDefinition(name string, raw interface{}, catalog *Catalog) (*Definition, error) {
	var entry serviceEntry
	if raw != nil {
		if err := mapstructure.WeakDecode(raw, &entry); err != nil {
			return nil, ErrInvalidDefinition.WithMsgf("cannot decode definition of service %q", name).Wrap(err)
		}
	}
	if entry.Type == "" {
		entry.Type = name
	}
	if err := entry.Validate(); err != nil {
		return nil, convertValidationError(name, err)
	}

	provider, err := catalog.Lookup(entry.Type)
	if err != nil {
		return nil, err
	}

	controller, err := lifecycle.NewController(entry.Lifecycle)
	if err != nil {
		return nil, err
	}

	cfg, err := component.NewConfiguration(entry.Config)
	if err != nil {
		return nil, err
	}

	opts := []RegisterOption{WithConfig(cfg)}
	if entry.Override {
		opts = append(opts, WithOverride())
	}
	return newDefinition(name, provider, controller, opts)
}

var _ Strategy = (*ConfigStrategy)(nil)
