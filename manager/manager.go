// Package manager is the process-wide access point to the current service
// registry.
//
// The manager holds exactly one registry.Strategy. Until SetDefaultStrategy
// is called it holds an empty registry.ConfigStrategy, so every lookup fails
// with registry.ErrServiceNotDefined. Swapping strategies does not shut the
// previous one down; that is the caller's job.
//
//	s := registry.NewRuntimeStrategy()
//	_ = s.RegisterSingletonService("cache", newCache)
//	prev, _ := manager.SetDefaultStrategy(s)
//	defer prev.Shutdown(ctx)
//
//	c, err := manager.Resolve[*cache.Service](ctx, "cache")
//
// Tests call Reset between cases.
package manager

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/errcode"
	"github.com/KOMKZ/go-yogan-servicemgr/registry"
)

const (
	ErrCodeServiceTypeMismatch = 7
	ErrCodeNilStrategy         = 12
)

var (
	// ErrServiceTypeMismatch the resolved service is not of the requested type
	ErrServiceTypeMismatch = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeServiceTypeMismatch,
		component.ModuleName, "error.servicemgr.service_type_mismatch", "service type mismatch",
	))

	// ErrNilStrategy SetDefaultStrategy was given nil
	ErrNilStrategy = errcode.Register(errcode.New(
		component.ModuleCode, ErrCodeNilStrategy,
		component.ModuleName, "error.servicemgr.nil_strategy", "strategy cannot be nil",
	))
)

// holder keeps the interface value addressable for atomic.Pointer
type holder struct {
	strategy registry.Strategy
}

var current atomic.Pointer[holder]

func init() {
	Reset()
}

// Current returns the installed strategy
func Current() registry.Strategy {
	return current.Load().strategy
}

// SetDefaultStrategy installs s and returns the strategy it replaced
func SetDefaultStrategy(s registry.Strategy) (registry.Strategy, error) {
	if s == nil {
		return nil, ErrNilStrategy
	}
	prev := current.Swap(&holder{strategy: s})
	return prev.strategy, nil
}

// Reset installs a fresh empty strategy. The previous one is not shut down.
func Reset() {
	current.Store(&holder{strategy: registry.NewConfigStrategy()})
}

// GetService forwards to the installed strategy
func GetService(ctx context.Context, name string, cfg ...*component.Configuration) (component.Service, error) {
	return Current().GetService(ctx, name, cfg...)
}

// IsServiceDefined forwards to the installed strategy
func IsServiceDefined(name string) bool {
	return Current().IsServiceDefined(name)
}

// Shutdown forwards to the installed strategy
func Shutdown(ctx context.Context) error {
	return Current().Shutdown(ctx)
}

// Resolve looks name up and asserts the result to T
func Resolve[T any](ctx context.Context, name string) (T, error) {
	var zero T

	svc, err := GetService(ctx, name)
	if err != nil {
		return zero, err
	}

	typed, ok := svc.(T)
	if !ok {
		return zero, ErrServiceTypeMismatch.
			WithMsgf("service %q is %T, not %s", name, svc, typeName[T]()).
			WithData("name", name)
	}
	return typed, nil
}

// MustResolve is Resolve that panics
func MustResolve[T any](ctx context.Context, name string) T {
	typed, err := Resolve[T](ctx, name)
	if err != nil {
		panic(err)
	}
	return typed
}

func typeName[T any]() string {
	var p *T
	return fmt.Sprintf("%T", p)[1:]
}
