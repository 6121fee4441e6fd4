package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/KOMKZ/go-yogan-servicemgr/registry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, values map[string]interface{}) *Service {
	t.Helper()
	svc := New()
	svc.SetLogger(logger.NewTestCtxLogger())
	require.NoError(t, svc.Init(context.Background(), component.MustConfiguration(values)))
	t.Cleanup(func() { _ = svc.Destroy(context.Background()) })
	return svc
}

func TestConfig_Defaults(t *testing.T) {
	svc := newService(t, nil)
	assert.Equal(t, DefaultInterval, svc.Config().Interval)
	assert.Equal(t, DefaultStopTimeout, svc.Config().StopTimeout)
}

func TestConfig_Invalid(t *testing.T) {
	err := New().Init(context.Background(), component.MustConfiguration(map[string]interface{}{"interval": "-1s"}))
	assert.True(t, errors.Is(err, ErrConfigInvalid))
}

func TestService_RunsJobs(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, map[string]interface{}{"interval": "20ms", "stop_timeout": "1s"})

	var runs atomic.Int32
	id, err := svc.AddJob("tick", func(context.Context) { runs.Add(1) })
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.NoError(t, svc.Start(ctx))
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Stop(ctx))
	stopped := runs.Load()
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), stopped+1, "no scheduling after Stop")
	assert.NoError(t, svc.Stop(ctx), "second Stop is a no-op")
}

func TestService_JobManagement(t *testing.T) {
	svc := newService(t, map[string]interface{}{"singleton": true})

	_, err := svc.AddIntervalJob("a", time.Hour, func(context.Context) {})
	require.NoError(t, err)
	_, err = svc.AddCronJob("b", "0 3 * * *", false, func(context.Context) {})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, svc.JobNames())

	_, err = svc.AddIntervalJob("a", time.Hour, func(context.Context) {})
	assert.True(t, errors.Is(err, ErrJobInvalid), "duplicate name")
	_, err = svc.AddCronJob("c", "not a cron", false, func(context.Context) {})
	assert.True(t, errors.Is(err, ErrJobInvalid))
	_, err = svc.AddJob("", func(context.Context) {})
	assert.True(t, errors.Is(err, ErrJobInvalid))

	require.NoError(t, svc.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, svc.JobNames())
	assert.True(t, errors.Is(svc.RemoveJob("a"), ErrJobInvalid))
}

func TestService_NotInitialised(t *testing.T) {
	svc := New()
	_, err := svc.AddJob("a", func(context.Context) {})
	assert.True(t, errors.Is(err, ErrNotInitialised))
	assert.True(t, errors.Is(svc.Start(context.Background()), ErrNotInitialised))
	assert.NoError(t, svc.Stop(context.Background()))
	assert.NoError(t, svc.Destroy(context.Background()))
}

func TestService_ThroughRegistry(t *testing.T) {
	ctx := context.Background()
	s := registry.NewRuntimeStrategy(registry.WithLogger(logger.NewTestCtxLogger()))
	cfg := component.MustConfiguration(map[string]interface{}{"interval": "10ms"})
	require.NoError(t, s.RegisterService("jobs", Provider(), lifecycle.NewSingleton(), registry.WithConfig(cfg)))

	got, err := s.GetService(ctx, "jobs")
	require.NoError(t, err)
	svc := got.(*Service)

	var runs atomic.Int32
	_, err = svc.AddJob("late", func(context.Context) { runs.Add(1) })
	require.NoError(t, err, "jobs can be added after start")
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Shutdown(ctx))
	_, err = svc.AddJob("after", func(context.Context) {})
	assert.True(t, errors.Is(err, ErrNotInitialised))
}
