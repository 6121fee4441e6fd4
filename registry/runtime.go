package registry

import (
	"context"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
)

// RuntimeStrategy is populated programmatically.
//
//	s := registry.NewRuntimeStrategy()
//	_ = s.RegisterSingletonService("cache", func() component.Service { return cache.New() },
//		registry.WithConfig(cfg))
//	svc, err := s.GetService(ctx, "cache")
type RuntimeStrategy struct {
	*BaseStrategy
}

// NewRuntimeStrategy creates an empty runtime strategy
func NewRuntimeStrategy(opts ...Option) *RuntimeStrategy {
	return &RuntimeStrategy{BaseStrategy: newBaseStrategy(opts...)}
}

// RegisterService stores a definition for name. Without WithOverride a
// second registration of the same name fails with ErrServiceAlreadyDefined
// and leaves the first one untouched.
func (s *RuntimeStrategy) RegisterService(name string, provider lifecycle.InstanceProvider, controller lifecycle.Controller, opts ...RegisterOption) error {
	def, err := newDefinition(name, provider, controller, opts)
	if err != nil {
		return err
	}
	return s.registerService(context.Background(), def)
}

// RegisterServiceByControllerOnly registers a controller the caller has
// already bound with Init. An unbound controller surfaces its own
// ErrInvalidControllerState on lookup.
func (s *RuntimeStrategy) RegisterServiceByControllerOnly(name string, controller lifecycle.Controller, opts ...RegisterOption) error {
	return s.RegisterService(name, nil, controller, opts...)
}

// RegisterServiceByConstructor wraps ctor in the default constructor provider
func (s *RuntimeStrategy) RegisterServiceByConstructor(name string, ctor func() component.Service, controller lifecycle.Controller, opts ...RegisterOption) error {
	provider, err := lifecycle.NewConstructorProvider(ctor)
	if err != nil {
		return ErrInvalidDefinition.WithMsgf("invalid constructor for service %q", name).Wrap(err)
	}
	return s.RegisterService(name, provider, controller, opts...)
}

// RegisterSingletonService is RegisterServiceByConstructor with a new
// singleton controller
func (s *RuntimeStrategy) RegisterSingletonService(name string, ctor func() component.Service, opts ...RegisterOption) error {
	return s.RegisterServiceByConstructor(name, ctor, lifecycle.NewSingleton(), opts...)
}

// MustRegisterService panics when registration fails. Use it for wiring
// that must not start half-configured.
func (s *RuntimeStrategy) MustRegisterService(name string, provider lifecycle.InstanceProvider, controller lifecycle.Controller, opts ...RegisterOption) {
	if err := s.RegisterService(name, provider, controller, opts...); err != nil {
		panic(err)
	}
}

var _ Strategy = (*RuntimeStrategy)(nil)
