package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainService struct {
	component.BaseService
	initialised bool
}

func (p *plainService) Init(context.Context, *component.Configuration) error {
	p.initialised = true
	return nil
}

func TestConstructorProvider_NewInstanceEachCall(t *testing.T) {
	p, err := NewConstructorProvider(func() *plainService { return &plainService{} })
	require.NoError(t, err)

	a, err := p.CreateServiceInstance()
	require.NoError(t, err)
	b, err := p.CreateServiceInstance()
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.False(t, a.(*plainService).initialised, "providers build, they do not initialise")
}

func TestConstructorProvider_Nil(t *testing.T) {
	_, err := NewConstructorProvider[*plainService](nil)
	assert.True(t, errors.Is(err, ErrInvalidProvider))

	assert.Panics(t, func() { Constructor[*plainService](nil) })
}

func TestProviderFunc(t *testing.T) {
	boom := errors.New("boom")
	p := ProviderFunc(func() (component.Service, error) { return nil, boom })

	_, err := p.CreateServiceInstance()
	assert.Same(t, boom, err)
}

func TestTypeProvider(t *testing.T) {
	p, err := NewTypeProvider((*plainService)(nil))
	require.NoError(t, err)

	a, err := p.CreateServiceInstance()
	require.NoError(t, err)
	b, err := p.CreateServiceInstance()
	require.NoError(t, err)

	assert.IsType(t, &plainService{}, a)
	assert.NotSame(t, a, b)
}

func TestTypeProvider_ValueType(t *testing.T) {
	p, err := NewTypeProvider(component.BaseService{})
	require.NoError(t, err)

	svc, err := p.CreateServiceInstance()
	require.NoError(t, err)
	assert.IsType(t, component.BaseService{}, svc)
}

func TestTypeProvider_Nil(t *testing.T) {
	_, err := NewTypeProvider(nil)
	assert.True(t, errors.Is(err, ErrInvalidProvider))
}

func TestKnownControllers(t *testing.T) {
	c, err := NewController(KindSingleton)
	require.NoError(t, err)
	assert.IsType(t, &Singleton{}, c)

	c, err = NewController("")
	require.NoError(t, err)
	assert.IsType(t, &Singleton{}, c)

	c, err = NewController(KindTransient)
	require.NoError(t, err)
	assert.IsType(t, &Transient{}, c)

	a, _ := NewController(KindSingleton)
	b, _ := NewController(KindSingleton)
	assert.NotSame(t, a, b, "each call yields a fresh controller")

	_, err = NewController("pooled")
	assert.True(t, errors.Is(err, ErrUnknownLifecycle))
}

func TestRegisterKind(t *testing.T) {
	require.NoError(t, RegisterKind("test-kind", func() Controller { return NewSingleton() }))
	assert.Contains(t, Kinds(), "test-kind")

	c, err := NewController("test-kind")
	require.NoError(t, err)
	assert.NotNil(t, c)

	assert.Error(t, RegisterKind("test-kind", func() Controller { return NewSingleton() }))
	assert.Error(t, RegisterKind(KindSingleton, func() Controller { return NewTransient() }))
	assert.Error(t, RegisterKind("", nil))
}
