package lifecycle

import (
	"reflect"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
)

// InstanceProvider builds one new, uninitialised service instance per call.
// Singleton controllers call it exactly once per activation, so it must not
// cache.
type InstanceProvider interface {
	CreateServiceInstance() (component.Service, error)
}

// ProviderFunc adapts a closure to InstanceProvider
type ProviderFunc func() (component.Service, error)

// CreateServiceInstance calls f
func (f ProviderFunc) CreateServiceInstance() (component.Service, error) {
	return f()
}

type constructorProvider[T component.Service] struct {
	ctor func() T
}

func (p constructorProvider[T]) CreateServiceInstance() (component.Service, error) {
	return p.ctor(), nil
}

// NewConstructorProvider wraps a zero-argument constructor. This is the
// default provider used by the runtime strategy's convenience registrations.
func NewConstructorProvider[T component.Service](ctor func() T) (InstanceProvider, error) {
	if ctor == nil {
		return nil, ErrInvalidProvider.WithMsg("service constructor cannot be nil")
	}
	return constructorProvider[T]{ctor: ctor}, nil
}

// Constructor is NewConstructorProvider for package-level wiring; it panics on
// a nil constructor.
func Constructor[T component.Service](ctor func() T) InstanceProvider {
	p, err := NewConstructorProvider(ctor)
	if err != nil {
		panic(err)
	}
	return p
}

type typeProvider struct {
	typ reflect.Type
}

// NewTypeProvider builds instances by reflection from a sample value's type.
// For a pointer sample such as (*Cache)(nil) every call returns a fresh
// zero-valued *Cache.
func NewTypeProvider(sample component.Service) (InstanceProvider, error) {
	if sample == nil {
		return nil, ErrInvalidProvider.WithMsg("service type sample cannot be nil")
	}

	typ := reflect.TypeOf(sample)
	return typeProvider{typ: typ}, nil
}

func (p typeProvider) CreateServiceInstance() (component.Service, error) {
	var v reflect.Value
	if p.typ.Kind() == reflect.Ptr {
		v = reflect.New(p.typ.Elem())
	} else {
		v = reflect.New(p.typ).Elem()
	}

	svc, ok := v.Interface().(component.Service)
	if !ok {
		return nil, ErrInvalidProvider.WithMsgf("type %s does not implement component.Service", p.typ)
	}
	return svc, nil
}
