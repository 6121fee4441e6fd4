// Package lifecycle turns an instance provider plus a configuration into a
// running, stoppable service instance.
//
// A Controller owns the activation policy for one service definition. The
// policy is chosen per registration: Singleton keeps one instance until
// shutdown, Transient builds a new instance on every request.
//
// Controllers are re-armable: Shutdown returns a controller to StateUnbound
// (a no-op when it is already unbound) and it may be bound again with Init.
// No controller is safe for concurrent use.
package lifecycle

import (
	"context"
	"reflect"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"go.uber.org/multierr"
)

// State of a controller
type State int

const (
	// StateUnbound no provider bound; GetService fails
	StateUnbound State = iota
	// StateBound provider and configuration bound, nothing built yet
	StateBound
	// StateRunning at least one instance is initialised and started
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "Unbound"
	case StateBound:
		return "Bound"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// Controller drives service instances through their lifecycle
type Controller interface {
	// Init binds a provider and configuration. It builds nothing.
	// A nil cfg binds component.Empty().
	Init(provider InstanceProvider, cfg *component.Configuration) error

	// GetService returns a started instance according to the policy
	GetService(ctx context.Context) (component.Service, error)

	// Shutdown stops and destroys every instance the controller built and
	// unbinds it
	Shutdown(ctx context.Context) error

	State() State
}

func checkBind(state State, provider InstanceProvider) error {
	if provider == nil {
		return ErrInvalidProvider.WithMsg("instance provider cannot be nil")
	}
	if state == StateRunning {
		return ErrInvalidControllerState.WithMsg("controller is running; shut it down before binding again")
	}
	return nil
}

func orEmpty(cfg *component.Configuration) *component.Configuration {
	if cfg == nil {
		return component.Empty()
	}
	return cfg
}

// activate builds an instance and drives Init then Start. On failure the
// half-built instance is destroyed best-effort and nothing is returned.
func activate(ctx context.Context, provider InstanceProvider, cfg *component.Configuration) (component.Service, error) {
	if provider == nil {
		return nil, ErrInvalidControllerState.WithMsg("unexpected state: instance provider not set")
	}

	inst, err := provider.CreateServiceInstance()
	if err != nil {
		return nil, ErrInstantiationFailed.Wrap(err)
	}
	if isNilService(inst) {
		return nil, ErrInstantiationFailed.WithMsg("instance provider returned a nil service")
	}

	if err := inst.Init(ctx, cfg); err != nil {
		_ = inst.Destroy(ctx)
		return nil, ErrActivationFailed.Wrapf(err, "service init failed")
	}
	if err := inst.Start(ctx); err != nil {
		_ = inst.Destroy(ctx)
		return nil, ErrActivationFailed.Wrapf(err, "service start failed")
	}
	return inst, nil
}

// isNilService also catches a typed nil pointer wrapped in the interface
func isNilService(inst component.Service) bool {
	if inst == nil {
		return true
	}
	rv := reflect.ValueOf(inst)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// teardown always runs both Stop and Destroy
func teardown(ctx context.Context, inst component.Service) error {
	return multierr.Append(inst.Stop(ctx), inst.Destroy(ctx))
}
