package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestCtxLogger records entries in memory for assertions in unit tests.
//
//	log := logger.NewTestCtxLogger()
//	strategy := registry.NewRuntimeStrategy(registry.WithLogger(log))
//	...
//	assert.True(t, log.HasLog("WARN", "service override teardown failed"))
type TestCtxLogger struct {
	mu   sync.RWMutex
	logs []LogEntry
}

// LogEntry is one recorded call
type LogEntry struct {
	Level   string
	Message string
	TraceID string
	Fields  map[string]interface{}
}

// NewTestCtxLogger creates an empty recorder
func NewTestCtxLogger() *TestCtxLogger {
	return &TestCtxLogger{}
}

func (t *TestCtxLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "DEBUG", msg, fields)
}

func (t *TestCtxLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "INFO", msg, fields)
}

func (t *TestCtxLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "WARN", msg, fields)
}

func (t *TestCtxLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "ERROR", msg, fields)
}

func (t *TestCtxLogger) record(ctx context.Context, level, msg string, fields []zap.Field) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logs = append(t.logs, LogEntry{
		Level:   level,
		Message: msg,
		TraceID: extractTraceIDFromContext(ctx, nil),
		Fields:  fieldsToMap(fields),
	})
}

// HasLog reports whether an entry with level and message exists
func (t *TestCtxLogger) HasLog(level, message string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.logs {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// HasLogWithField also matches one encoded field value.
// zap encodes ints as int64.
func (t *TestCtxLogger) HasLogWithField(level, message, key string, value interface{}) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.logs {
		if e.Level == level && e.Message == message {
			if v, ok := e.Fields[key]; ok && v == value {
				return true
			}
		}
	}
	return false
}

// CountLogs counts entries at level
func (t *TestCtxLogger) CountLogs(level string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, e := range t.logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Logs returns a copy of all entries
func (t *TestCtxLogger) Logs() []LogEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]LogEntry, len(t.logs))
	copy(out, t.logs)
	return out
}

// Clear drops all entries
func (t *TestCtxLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = nil
}

func fieldsToMap(fields []zap.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}
