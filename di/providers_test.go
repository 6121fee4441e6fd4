package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/KOMKZ/go-yogan-servicemgr/config"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/KOMKZ/go-yogan-servicemgr/manager"
	"github.com/KOMKZ/go-yogan-servicemgr/registry"
	"github.com/KOMKZ/go-yogan-servicemgr/telemetry"
	"github.com/KOMKZ/go-yogan-servicemgr/testutil"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const servicesYAML = `
logger:
  level: debug
  enable_console: false
services:
  primary:
    type: recording
    config:
      region: eu
  scratch:
    type: recording
    lifecycle: transient
`

func newInjector(t *testing.T, yaml string) (*do.RootScope, *testutil.Recorder) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	rec := testutil.NewRecorder()
	catalog := registry.NewCatalog().
		MustRegister("recording", testutil.NewCountingProvider(rec, "svc"))

	injector := do.New()
	RegisterCoreProviders(injector, Options{
		Loader:          config.ProvideLoaderOptions{ConfigPath: dir, Env: "test"},
		Catalog:         catalog,
		StrategyOptions: []registry.Option{registry.WithLogger(logger.NewTestCtxLogger())},
	})
	t.Cleanup(func() {
		manager.Reset()
		_ = injector.Shutdown()
	})
	return injector, rec
}

func TestProvideLoggerManager(t *testing.T) {
	injector, _ := newInjector(t, servicesYAML)

	mgr, err := do.Invoke[*logger.Manager](injector)
	require.NoError(t, err)
	assert.Equal(t, "debug", mgr.Config().Level)
	assert.False(t, mgr.Config().EnableConsole)
	assert.Same(t, mgr, logger.Global())
}

func TestProvideLoggerManager_InvalidLevel(t *testing.T) {
	injector, _ := newInjector(t, "logger:\n  level: loud\n")

	_, err := do.Invoke[*logger.Manager](injector)
	assert.Error(t, err)
}

func TestProvideConfigStrategy(t *testing.T) {
	injector, rec := newInjector(t, servicesYAML)

	s, err := do.Invoke[*registry.ConfigStrategy](injector)
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "scratch"}, s.DefinedNames())

	svc, err := s.GetService(context.Background(), "primary")
	require.NoError(t, err)
	assert.Equal(t, "eu", svc.(*testutil.RecordingService).Config.GetString("region"))
	assert.Equal(t, 1, rec.Count("svc#1.start"))
}

func TestProvideConfigStrategy_BadDefinition(t *testing.T) {
	injector, _ := newInjector(t, "services:\n  broken:\n    type: missing\n")

	_, err := do.Invoke[*registry.ConfigStrategy](injector)
	assert.ErrorIs(t, err, registry.ErrUnknownServiceType)
}

func TestProvideRuntimeStrategy(t *testing.T) {
	injector, _ := newInjector(t, servicesYAML)

	s, err := do.Invoke[*registry.RuntimeStrategy](injector)
	require.NoError(t, err)
	assert.Empty(t, s.DefinedNames())
}

func TestInstallFacade(t *testing.T) {
	injector, _ := newInjector(t, servicesYAML)

	s, err := InstallFacade[*registry.ConfigStrategy](injector)
	require.NoError(t, err)
	assert.Same(t, s, manager.Current())
	assert.True(t, manager.IsServiceDefined("scratch"))

	svc, err := manager.Resolve[*testutil.RecordingService](context.Background(), "primary")
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestInjectorShutdown_StopsActiveServices(t *testing.T) {
	injector, rec := newInjector(t, servicesYAML)

	s, err := do.Invoke[*registry.ConfigStrategy](injector)
	require.NoError(t, err)
	_, err = s.GetService(context.Background(), "primary")
	require.NoError(t, err)

	_ = injector.Shutdown()
	assert.Equal(t, 1, rec.Count("svc#1.stop"))
	assert.Equal(t, 1, rec.Count("svc#1.destroy"))
	assert.False(t, s.IsServiceActive("primary"))
}

func TestRegisterCoreProviders_LoaderValue(t *testing.T) {
	loader := config.NewLoader()
	require.NoError(t, loader.Load())

	injector := do.New()
	defer injector.Shutdown()
	RegisterCoreProviders(injector, Options{LoaderValue: loader})

	got, err := do.Invoke[*config.Loader](injector)
	require.NoError(t, err)
	assert.Same(t, loader, got)

	s, err := do.Invoke[*registry.ConfigStrategy](injector)
	require.NoError(t, err)
	assert.Empty(t, s.DefinedNames())
}

func TestProvideTelemetry_DisabledByDefault(t *testing.T) {
	injector, _ := newInjector(t, servicesYAML)

	tm, err := do.Invoke[*telemetry.Manager](injector)
	require.NoError(t, err)
	assert.False(t, tm.Config().Enabled)
}

func TestProvideTelemetry_Enabled(t *testing.T) {
	injector, _ := newInjector(t, `
logger:
  enable_console: false
telemetry:
  enabled: true
  service_name: di-test
  exporter:
    type: noop
  batch:
    enabled: false
`)

	tm, err := do.Invoke[*telemetry.Manager](injector)
	require.NoError(t, err)
	assert.Equal(t, "di-test", tm.Config().ServiceName)
	assert.Equal(t, telemetry.ExporterNoop, tm.Config().Exporter.Type)
}

func TestProvideTelemetry_Invalid(t *testing.T) {
	injector, _ := newInjector(t, "telemetry:\n  enabled: true\n  exporter:\n    type: zipkin\n")

	_, err := do.Invoke[*telemetry.Manager](injector)
	assert.Error(t, err)
	_, err = do.Invoke[*registry.RuntimeStrategy](injector)
	assert.Error(t, err)
}
