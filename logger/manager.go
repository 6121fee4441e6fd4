package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager owns one zap logger per module name
type Manager struct {
	cfg     ManagerConfig
	loggers map[string]*CtxZapLogger
	zaps    map[string]*zap.Logger
	writers map[string][]*lumberjack.Logger
	mu      sync.RWMutex
}

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewManager creates a manager; zero-valued fields in cfg get defaults
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		cfg:     cfg,
		loggers: make(map[string]*CtxZapLogger),
		zaps:    make(map[string]*zap.Logger),
		writers: make(map[string][]*lumberjack.Logger),
	}
}

// Config returns the effective configuration
func (m *Manager) Config() ManagerConfig {
	return m.cfg
}

// GetLogger returns the logger for module, creating it on first use.
// Every entry carries a `module` field.
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.createLogger(module).With(zap.String("module", module))
	l := &CtxZapLogger{
		base:   base.WithOptions(zap.AddCallerSkip(1)),
		module: module,
		config: &m.cfg,
	}
	m.loggers[module] = l
	m.zaps[module] = base
	return l
}

func (m *Manager) createLogger(module string) *zap.Logger {
	encoder := newEncoder(m.cfg.Encoding)
	level := ParseLevel(m.cfg.Level)
	var cores []zapcore.Core

	if m.cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	if m.cfg.EnableFile {
		infoWriter, infoLumber := newFileWriter(m.cfg.moduleFilePath(module, "info"), m.cfg)
		errorWriter, errorLumber := newFileWriter(m.cfg.moduleFilePath(module, "error"), m.cfg)
		m.writers[module] = []*lumberjack.Logger{infoLumber, errorLumber}

		cores = append(cores,
			zapcore.NewCore(encoder, infoWriter, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= level && l < zapcore.ErrorLevel
			})),
			zapcore.NewCore(encoder, errorWriter, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
				return l >= zapcore.ErrorLevel
			})),
		)
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	var opts []zap.Option
	if m.cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

// CloseAll flushes every logger and closes rotated files
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.zaps {
		_ = l.Sync()
	}
	for _, ws := range m.writers {
		for _, w := range ws {
			_ = w.Close()
		}
	}

	m.loggers = make(map[string]*CtxZapLogger)
	m.zaps = make(map[string]*zap.Logger)
	m.writers = make(map[string][]*lumberjack.Logger)
}

func newEncoder(encoding string) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "console" {
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}

func newFileWriter(filename string, cfg ManagerConfig) (zapcore.WriteSyncer, *lumberjack.Logger) {
	_ = os.MkdirAll(filepath.Dir(filename), 0o755)

	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	return zapcore.AddSync(lj), lj
}

// ============================================
// package-level manager
// ============================================

// InitManager replaces the global manager. The previous one is closed.
func InitManager(cfg ManagerConfig) *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager != nil {
		globalManager.CloseAll()
	}
	globalManager = NewManager(cfg)
	return globalManager
}

// Global returns the global manager, creating a default one if needed
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		globalManager = NewManager(DefaultManagerConfig())
	}
	return globalManager
}

// GetLogger returns a module logger from the global manager
func GetLogger(module string) *CtxZapLogger {
	return Global().GetLogger(module)
}

// CloseAll closes the global manager's loggers
func CloseAll() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager != nil {
		globalManager.CloseAll()
	}
}

// Shutdown closes every module logger. do.Injector calls it on shutdown.
func (m *Manager) Shutdown() {
	m.CloseAll()
}
