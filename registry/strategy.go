// Package registry stores named service definitions and activates their
// lifecycle controllers on first use.
//
// A definition (provider + controller + configuration) is kept separately
// from the set of activated controllers: a name can be defined for the life
// of the process and never be built. Resolution is lazy, overrides tear the
// replaced controller down before the new definition takes effect, and
// Shutdown stops every active controller and forgets every definition.
//
// Strategies are not safe for concurrent use. Callers running registrations
// or lookups from several goroutines must serialise them. Managed services
// may call back into the strategy from Init or Start.
package registry

import (
	"context"
	"sort"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Strategy is what the facade forwards to
type Strategy interface {
	// GetService resolves name, activating its controller on first use.
	// cfg is accepted for symmetry and ignored; the configuration captured
	// at registration always wins.
	GetService(ctx context.Context, name string, cfg ...*component.Configuration) (component.Service, error)

	// IsServiceDefined reports whether a definition exists, active or not
	IsServiceDefined(name string) bool

	// Shutdown stops every active controller and drops every definition
	Shutdown(ctx context.Context) error
}

// BaseStrategy holds the definition store and the active controller map.
// RuntimeStrategy and ConfigStrategy embed it.
type BaseStrategy struct {
	definitions map[string]*Definition
	active      map[string]lifecycle.Controller
	// resolving holds names whose GetService is on the call stack
	resolving map[string]struct{}

	logger logger.CtxLogger
	inst   *instruments
}

func newBaseStrategy(opts ...Option) *BaseStrategy {
	o := strategyOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.GetLogger(component.ModuleName)
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}

	return &BaseStrategy{
		definitions: make(map[string]*Definition),
		active:      make(map[string]lifecycle.Controller),
		resolving:   make(map[string]struct{}),
		logger:      o.logger,
		inst:        newInstruments(o.meterProvider, o.tracerProvider),
	}
}

// registerService validates the definition before touching any existing
// state. On override the active controller for the name (if any) is shut
// down and forgotten before the new definition is installed.
func (s *BaseStrategy) registerService(ctx context.Context, def *Definition) error {
	if err := s.checkRegistration(def); err != nil {
		return err
	}

	if _, exists := s.definitions[def.Name]; exists {
		s.discard(ctx, def.Name)
	}

	s.definitions[def.Name] = def
	s.logger.DebugCtx(ctx, "service registered",
		zap.String("name", def.Name),
		zap.Bool("has_provider", def.Provider != nil),
		zap.Bool("override", def.Override),
		zap.Int("config_keys", def.Config.Len()))
	return nil
}

// checkRegistration is the side-effect free part of registerService
func (s *BaseStrategy) checkRegistration(def *Definition) error {
	if _, exists := s.definitions[def.Name]; exists && !def.Override {
		return ErrServiceAlreadyDefined.
			WithMsgf("service %q is already defined; register with override to replace it", def.Name).
			WithData("name", def.Name)
	}
	return nil
}

// discard drops the definition for name and tears down its active controller.
// A teardown failure is logged; the caller carries on with the override.
func (s *BaseStrategy) discard(ctx context.Context, name string) {
	delete(s.definitions, name)
	s.inst.recordOverride(ctx, name)

	ctrl, ok := s.active[name]
	if !ok {
		s.logger.DebugCtx(ctx, "service definition overridden before activation", zap.String("name", name))
		return
	}
	delete(s.active, name)

	err := ctrl.Shutdown(ctx)
	s.inst.recordShutdown(ctx, name, err)
	if err != nil {
		s.logger.WarnCtx(ctx, "service override teardown failed", zap.String("name", name), zap.Error(err))
		return
	}
	s.logger.InfoCtx(ctx, "active service shut down for override", zap.String("name", name))
}

func (s *BaseStrategy) GetService(ctx context.Context, name string, _ ...*component.Configuration) (component.Service, error) {
	def, ok := s.definitions[name]
	if !ok {
		return nil, ErrServiceNotDefined.
			WithMsgf("service %q is not defined", name).
			WithData("name", name)
	}

	if _, busy := s.resolving[name]; busy {
		return nil, lifecycle.ErrInvalidControllerState.
			WithMsgf("service %q requested itself during activation", name).
			WithData("name", name)
	}
	s.resolving[name] = struct{}{}
	defer delete(s.resolving, name)

	if ctrl, ok := s.active[name]; ok {
		return ctrl.GetService(ctx)
	}
	return s.activate(ctx, def)
}

// activate binds the controller (when the definition carries a provider),
// records it as active and asks it for the service. A controller that fails
// after binding stays active; the next lookup retries through it.
func (s *BaseStrategy) activate(ctx context.Context, def *Definition) (svc component.Service, err error) {
	activationID := uuid.NewString()
	ctx, span := s.inst.tracer.Start(ctx, spanActivate, trace.WithAttributes(
		AttrServiceName.String(def.Name),
		AttrActivationID.String(activationID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.inst.recordActivation(ctx, def.Name, err)
		span.End()
	}()

	if def.Provider != nil {
		if err = def.Controller.Init(def.Provider, def.Config); err != nil {
			s.logger.ErrorCtx(ctx, "failed to bind lifecycle controller",
				zap.String("name", def.Name), zap.String("activation_id", activationID), zap.Error(err))
			return nil, err
		}
	}
	s.active[def.Name] = def.Controller

	svc, err = def.Controller.GetService(ctx)
	if err != nil {
		s.logger.ErrorCtx(ctx, "service activation failed",
			zap.String("name", def.Name), zap.String("activation_id", activationID), zap.Error(err))
		return nil, err
	}

	s.logger.InfoCtx(ctx, "service activated",
		zap.String("name", def.Name), zap.String("activation_id", activationID))
	return svc, nil
}

func (s *BaseStrategy) IsServiceDefined(name string) bool {
	_, ok := s.definitions[name]
	return ok
}

// IsServiceActive reports whether name has an activated controller
func (s *BaseStrategy) IsServiceActive(name string) bool {
	_, ok := s.active[name]
	return ok
}

// DefinedNames returns every defined name, sorted
func (s *BaseStrategy) DefinedNames() []string {
	return sortedKeys(s.definitions)
}

// ActiveNames returns every activated name, sorted
func (s *BaseStrategy) ActiveNames() []string {
	return sortedKeys(s.active)
}

// Shutdown attempts every active controller, then clears both maps. The
// returned error combines every controller failure.
func (s *BaseStrategy) Shutdown(ctx context.Context) error {
	var errs error
	names := sortedKeys(s.active)

	for _, name := range names {
		ctrl, ok := s.active[name]
		if !ok {
			continue
		}
		err := ctrl.Shutdown(ctx)
		s.inst.recordShutdown(ctx, name, err)
		if err != nil {
			s.logger.ErrorCtx(ctx, "service shutdown failed", zap.String("name", name), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}

	defined := len(s.definitions)
	s.active = make(map[string]lifecycle.Controller)
	s.definitions = make(map[string]*Definition)

	s.logger.InfoCtx(ctx, "service registry shut down",
		zap.Int("stopped", len(names)), zap.Int("definitions_cleared", defined))
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ Strategy = (*BaseStrategy)(nil)
