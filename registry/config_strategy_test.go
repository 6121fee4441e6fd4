package registry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/KOMKZ/go-yogan-servicemgr/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const servicesYAML = `
services:
  cache:
    config:
      ttl_seconds: 60
      hosts: [a, b]
  jobs:
    type: worker
    lifecycle: transient
`

func loadYAML(t *testing.T, body string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(body)))
	return v
}

func newTestCatalog(rec *testutil.Recorder) (*Catalog, map[string]*testutil.CountingProvider) {
	providers := map[string]*testutil.CountingProvider{
		"cache":  testutil.NewCountingProvider(rec, "cache"),
		"worker": testutil.NewCountingProvider(rec, "worker"),
	}
	c := NewCatalog()
	for name, p := range providers {
		c.MustRegister(name, p)
	}
	return c, providers
}

func TestConfigStrategy_EmptyByDefault(t *testing.T) {
	s := NewConfigStrategy(WithLogger(logger.NewTestCtxLogger()))

	assert.False(t, s.IsServiceDefined("cache"))
	_, err := s.GetService(context.Background(), "cache")
	assert.True(t, errors.Is(err, ErrServiceNotDefined))
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestConfigStrategy_LoadDefinitions(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecorder()
	catalog, providers := newTestCatalog(rec)
	s := NewConfigStrategy(WithLogger(logger.NewTestCtxLogger()))

	n, err := s.LoadDefinitions(loadYAML(t, servicesYAML), catalog)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"cache", "jobs"}, s.DefinedNames())

	svc, err := s.GetService(ctx, "cache")
	require.NoError(t, err)
	cfg := svc.(*testutil.RecordingService).Config
	assert.Equal(t, 60, cfg.GetInt("ttl_seconds"))
	assert.Equal(t, []string{"a", "b"}, cfg.GetStringSlice("hosts"))

	again, err := s.GetService(ctx, "cache")
	require.NoError(t, err)
	assert.Same(t, svc, again)

	a, err := s.GetService(ctx, "jobs")
	require.NoError(t, err)
	b, err := s.GetService(ctx, "jobs")
	require.NoError(t, err)
	assert.NotSame(t, a, b, "transient lifecycle")
	assert.Equal(t, 2, providers["worker"].Count())

	require.NoError(t, s.Shutdown(ctx))
	assert.Empty(t, s.DefinedNames())
	assert.Equal(t, 1, rec.Count("cache#1.destroy"))
}

func TestConfigStrategy_MissingSection(t *testing.T) {
	s := NewConfigStrategy(WithLogger(logger.NewTestCtxLogger()))

	n, err := s.LoadDefinitions(viper.New(), NewCatalog())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestConfigStrategy_CustomSection(t *testing.T) {
	rec := testutil.NewRecorder()
	catalog, _ := newTestCatalog(rec)
	s := NewConfigStrategy(WithLogger(logger.NewTestCtxLogger()))

	v := loadYAML(t, "managed:\n  cache: {}\n")
	n, err := s.LoadDefinitions(v, catalog, WithSection("managed"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, s.IsServiceDefined("cache"))
}

func TestConfigStrategy_BadEntryLeavesStrategyUntouched(t *testing.T) {
	rec := testutil.NewRecorder()
	catalog, _ := newTestCatalog(rec)
	s := NewConfigStrategy(WithLogger(logger.NewTestCtxLogger()))

	_, err := s.LoadDefinitions(loadYAML(t, `
services:
  cache: {}
  mystery:
    type: nope
`), catalog)
	assert.True(t, errors.Is(err, ErrUnknownServiceType))
	assert.Empty(t, s.DefinedNames())

	_, err = s.LoadDefinitions(loadYAML(t, `
services:
  cache:
    lifecycle: pooled
`), catalog)
	assert.True(t, errors.Is(err, lifecycle.ErrUnknownLifecycle))
	assert.Empty(t, s.DefinedNames())
}

func TestConfigStrategy_NotAMap(t *testing.T) {
	s := NewConfigStrategy(WithLogger(logger.NewTestCtxLogger()))

	_, err := s.LoadDefinitions(loadYAML(t, "services: [a, b]\n"), NewCatalog())
	assert.True(t, errors.Is(err, ErrInvalidDefinition))
}

func TestConfigStrategy_OverrideRules(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecorder()
	catalog, _ := newTestCatalog(rec)
	s := NewConfigStrategy(WithLogger(logger.NewTestCtxLogger()))

	_, err := s.LoadDefinitions(loadYAML(t, "services:\n  cache: {}\n"), catalog)
	require.NoError(t, err)
	_, err = s.GetService(ctx, "cache")
	require.NoError(t, err)

	_, err = s.LoadDefinitions(loadYAML(t, "services:\n  cache: {}\n"), catalog)
	assert.True(t, errors.Is(err, ErrServiceAlreadyDefined))
	assert.Equal(t, 0, rec.Count("cache#1.stop"))

	_, err = s.LoadDefinitions(loadYAML(t, `
services:
  cache:
    override: true
    config:
      ttl_seconds: 5
`), catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count("cache#1.stop"))
	assert.Equal(t, 1, rec.Count("cache#1.destroy"))

	svc, err := s.GetService(ctx, "cache")
	require.NoError(t, err)
	assert.Equal(t, "cache#2", svc.(*testutil.RecordingService).ID)
	assert.Equal(t, 5, svc.(*testutil.RecordingService).Config.GetInt("ttl_seconds"))
}

func TestConfigStrategy_NilCatalog(t *testing.T) {
	s := NewConfigStrategy(WithLogger(logger.NewTestCtxLogger()))

	_, err := s.LoadDefinitions(loadYAML(t, "services:\n  cache: {}\n"), nil)
	assert.True(t, errors.Is(err, ErrUnknownServiceType))
}

func TestCatalog(t *testing.T) {
	rec := testutil.NewRecorder()
	c := NewCatalog()

	require.NoError(t, c.Register("cache", testutil.NewCountingProvider(rec, "cache")))
	assert.True(t, errors.Is(c.Register("cache", testutil.NewCountingProvider(rec, "x")), ErrInvalidDefinition))
	assert.True(t, errors.Is(c.Register("", testutil.NewCountingProvider(rec, "x")), ErrInvalidDefinition))
	assert.True(t, errors.Is(c.Register("x", nil), ErrInvalidDefinition))

	p, err := c.Lookup("cache")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = c.Lookup("missing")
	assert.True(t, errors.Is(err, ErrUnknownServiceType))

	c.MustRegister("b", testutil.NewCountingProvider(rec, "b"))
	assert.Equal(t, []string{"b", "cache"}, c.Names())
	assert.Panics(t, func() { c.MustRegister("b", testutil.NewCountingProvider(rec, "b")) })
}
