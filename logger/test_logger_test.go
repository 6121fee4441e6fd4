package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTestCtxLogger(t *testing.T) {
	log := NewTestCtxLogger()
	ctx := context.Background()
	traced := context.WithValue(ctx, "trace_id", "t-1")

	log.InfoCtx(ctx, "service activated", zap.String("service", "cache"))
	log.DebugCtx(ctx, "binding controller", zap.Int("attempt", 2))
	log.WarnCtx(traced, "teardown failed", zap.Error(errors.New("boom")))
	log.ErrorCtx(ctx, "shutdown failed")

	assert.True(t, log.HasLog("INFO", "service activated"))
	assert.True(t, log.HasLogWithField("INFO", "service activated", "service", "cache"))
	assert.True(t, log.HasLogWithField("DEBUG", "binding controller", "attempt", int64(2)))
	assert.True(t, log.HasLogWithField("WARN", "teardown failed", "error", "boom"))
	assert.False(t, log.HasLog("INFO", "missing"))

	assert.Equal(t, 1, log.CountLogs("ERROR"))
	entries := log.Logs()
	assert.Len(t, entries, 4)
	assert.Equal(t, "t-1", entries[2].TraceID)

	log.Clear()
	assert.Empty(t, log.Logs())
}
