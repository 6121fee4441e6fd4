package lifecycle

import (
	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/errcode"
)

const (
	ErrCodeInvalidControllerState = 3
	ErrCodeInstantiationFailed    = 5
	ErrCodeActivationFailed       = 6
	ErrCodeUnknownLifecycle       = 9
	ErrCodeInvalidProvider        = 11
)

var (
	// ErrInvalidControllerState a controller was asked for a service while unbound,
	// or rebound while running
	ErrInvalidControllerState = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeInvalidControllerState,
		component.ModuleName, "error.servicemgr.invalid_controller_state", "invalid lifecycle controller state",
	))

	// ErrInstantiationFailed the instance provider failed or returned nil
	ErrInstantiationFailed = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeInstantiationFailed,
		component.ModuleName, "error.servicemgr.instantiation_failed", "failed to instantiate service",
	))

	// ErrActivationFailed Init or Start on a new instance returned an error
	ErrActivationFailed = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeActivationFailed,
		component.ModuleName, "error.servicemgr.activation_failed", "failed to activate service",
	))

	// ErrUnknownLifecycle no controller kind registered under the name
	ErrUnknownLifecycle = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeUnknownLifecycle,
		component.ModuleName, "error.servicemgr.unknown_lifecycle", "unknown lifecycle controller kind",
	))

	// ErrInvalidProvider nil provider, nil constructor or a type that does not
	// implement component.Service
	ErrInvalidProvider = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeInvalidProvider,
		component.ModuleName, "error.servicemgr.invalid_provider", "invalid instance provider",
	))
)
