// Package logger provides per-module zap loggers with trace id enrichment.
//
// Library packages depend on the CtxLogger interface; applications obtain a
// concrete *CtxZapLogger from a Manager (or the package-level GetLogger) and
// tests substitute a *TestCtxLogger.
package logger

import (
	"context"

	"go.uber.org/zap"
)

// CtxLogger is the logging surface used throughout the module
type CtxLogger interface {
	DebugCtx(ctx context.Context, msg string, fields ...zap.Field)
	InfoCtx(ctx context.Context, msg string, fields ...zap.Field)
	WarnCtx(ctx context.Context, msg string, fields ...zap.Field)
	ErrorCtx(ctx context.Context, msg string, fields ...zap.Field)
}

var (
	_ CtxLogger = (*CtxZapLogger)(nil)
	_ CtxLogger = (*TestCtxLogger)(nil)
)
