package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-servicemgr/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransient_NewInstancePerRequest(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecorder()
	provider := testutil.NewCountingProvider(rec, "job")

	c := NewTransient()
	require.NoError(t, c.Init(provider, nil))
	assert.Equal(t, StateBound, c.State())

	a, err := c.GetService(ctx)
	require.NoError(t, err)
	b, err := c.GetService(ctx)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 2, provider.Count())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, StateRunning, c.State())

	require.NoError(t, c.Shutdown(ctx))
	assert.Equal(t, []string{
		"job#1.init", "job#1.start",
		"job#2.init", "job#2.start",
		"job#1.stop", "job#1.destroy",
		"job#2.stop", "job#2.destroy",
	}, rec.Calls())
	assert.Equal(t, StateUnbound, c.State())
	assert.Equal(t, 0, c.Len())
}

func TestTransient_Unbound(t *testing.T) {
	c := NewTransient()
	_, err := c.GetService(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidControllerState))
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestTransient_FailedActivationNotTracked(t *testing.T) {
	rec := testutil.NewRecorder()
	provider := testutil.NewCountingProvider(rec, "job")
	provider.Configure = func(s *testutil.RecordingService) { s.InitErr = errors.New("nope") }

	c := NewTransient()
	require.NoError(t, c.Init(provider, nil))
	_, err := c.GetService(context.Background())

	assert.True(t, errors.Is(err, ErrActivationFailed))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, StateBound, c.State())
}

func TestTransient_ShutdownCollectsErrors(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecorder()
	provider := testutil.NewCountingProvider(rec, "job")
	boom := errors.New("boom")
	provider.Configure = func(s *testutil.RecordingService) {
		if s.ID == "job#1" {
			s.StopErr = boom
		}
	}

	c := NewTransient()
	require.NoError(t, c.Init(provider, nil))
	_, _ = c.GetService(ctx)
	_, _ = c.GetService(ctx)

	err := c.Shutdown(ctx)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, rec.Count("job#2.destroy"))
}
