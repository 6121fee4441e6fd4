package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/KOMKZ/go-yogan-servicemgr/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startService(t *testing.T, values map[string]interface{}) *Service {
	t.Helper()
	ctx := context.Background()
	svc := New()
	svc.SetLogger(logger.NewTestCtxLogger())
	require.NoError(t, svc.Init(ctx, component.MustConfiguration(values)))
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(func() { _ = svc.Destroy(ctx) })
	return svc
}

func TestConfig(t *testing.T) {
	svc := startService(t, nil)
	assert.Equal(t, DefaultSize, svc.Cap())
	assert.Equal(t, DefaultReleaseTimeout, svc.Config().ReleaseTimeout)

	err := New().Init(context.Background(), component.MustConfiguration(map[string]interface{}{"size": -1}))
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestService_Submit(t *testing.T) {
	svc := startService(t, map[string]interface{}{"size": 4})

	var done atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		require.NoError(t, svc.Submit(func() {
			defer wg.Done()
			done.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(20), done.Load())
}

func TestService_NonblockingOverload(t *testing.T) {
	svc := startService(t, map[string]interface{}{"size": 1, "nonblocking": true})

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, svc.Submit(func() {
		close(started)
		<-release
	}))
	<-started

	err := svc.Submit(func() {})
	assert.True(t, errors.Is(err, ErrSubmitFailed))
	close(release)
}

func TestService_PanicIsRecovered(t *testing.T) {
	log := logger.NewTestCtxLogger()
	svc := New()
	svc.SetLogger(log)
	require.NoError(t, svc.Init(context.Background(), component.Empty()))
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Destroy(context.Background())

	require.NoError(t, svc.Submit(func() { panic("boom") }))
	assert.Eventually(t, func() bool {
		return log.HasLog("ERROR", "worker pool task panicked")
	}, time.Second, 10*time.Millisecond)
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := New()
	assert.True(t, errors.Is(svc.Submit(func() {}), ErrNotStarted))
	assert.True(t, errors.Is(svc.Start(ctx), ErrNotStarted))
	assert.Equal(t, 0, svc.Cap())
	assert.Equal(t, 0, svc.Running())

	require.NoError(t, svc.Init(ctx, component.Empty()))
	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Stop(ctx))
	assert.True(t, errors.Is(svc.Submit(func() {}), ErrNotStarted))
	assert.NoError(t, svc.Stop(ctx))
	assert.NoError(t, svc.Destroy(ctx))
	assert.NoError(t, svc.Destroy(ctx))
}

func TestService_ThroughRegistry(t *testing.T) {
	ctx := context.Background()
	s := registry.NewRuntimeStrategy(registry.WithLogger(logger.NewTestCtxLogger()))
	cfg := component.MustConfiguration(map[string]interface{}{"size": 2, "release_timeout": "1s"})
	require.NoError(t, s.RegisterService("pool", Provider(), lifecycle.NewSingleton(), registry.WithConfig(cfg)))

	got, err := s.GetService(ctx, "pool")
	require.NoError(t, err)
	svc := got.(*Service)
	assert.Equal(t, 2, svc.Cap())

	var ran atomic.Bool
	require.NoError(t, svc.Submit(func() { ran.Store(true) }))
	require.NoError(t, s.Shutdown(ctx))
	assert.True(t, ran.Load(), "Stop waits for submitted tasks")
	assert.True(t, errors.Is(svc.Submit(func() {}), ErrNotStarted))
}
