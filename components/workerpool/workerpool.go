// Package workerpool is a managed goroutine pool built on ants.
//
//	services:
//	  pool:
//	    type: workerpool
//	    config:
//	      size: 64
//	      nonblocking: false
//	      release_timeout: 5s
package workerpool

import (
	"context"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/errcode"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ModuleCode worker pool errors are 63xxxx
const ModuleCode = 63

var (
	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, 1, "workerpool", "error.workerpool.config_invalid", "invalid worker pool configuration"))

	// ErrSubmitFailed the pool rejected the task (overloaded or closed)
	ErrSubmitFailed = errcode.Register(errcode.New(
		ModuleCode, 2, "workerpool", "error.workerpool.submit_failed", "task submission failed"))

	// ErrNotStarted Submit was called outside Start..Stop
	ErrNotStarted = errcode.Register(errcode.New(
		ModuleCode, 3, "workerpool", "error.workerpool.not_started", "worker pool is not running"))
)

// Config is decoded from the service configuration
type Config struct {
	Size           int           `mapstructure:"size"`
	Nonblocking    bool          `mapstructure:"nonblocking"`
	ExpiryDuration time.Duration `mapstructure:"expiry_duration"`
	ReleaseTimeout time.Duration `mapstructure:"release_timeout"`
}

// Default values
const (
	DefaultSize           = 64
	DefaultExpiryDuration = time.Second
	DefaultReleaseTimeout = 5 * time.Second
)

func (c *Config) ApplyDefaults() {
	if c.Size == 0 {
		c.Size = DefaultSize
	}
	if c.ExpiryDuration == 0 {
		c.ExpiryDuration = DefaultExpiryDuration
	}
	if c.ReleaseTimeout == 0 {
		c.ReleaseTimeout = DefaultReleaseTimeout
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Size, validation.Min(1)),
		validation.Field(&c.ExpiryDuration, validation.Min(time.Millisecond)),
		validation.Field(&c.ReleaseTimeout, validation.Min(time.Millisecond)),
	)
}

// Service implements component.Service
type Service struct {
	mu      sync.RWMutex
	cfg     Config
	pool    *ants.Pool
	running bool
	logger  logger.CtxLogger
}

// New returns an uninitialised worker pool service
func New() *Service {
	return &Service{logger: logger.GetLogger("workerpool")}
}

// Provider builds a new Service per call
func Provider() lifecycle.InstanceProvider {
	return lifecycle.Constructor(New)
}

// SetLogger replaces the module logger; call before Init
func (s *Service) SetLogger(l logger.CtxLogger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Service) Init(ctx context.Context, conf *component.Configuration) error {
	var cfg Config
	if err := conf.Unmarshal(&cfg); err != nil {
		return ErrConfigInvalid.Wrap(err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return ErrConfigInvalid.WithMsgf("invalid worker pool configuration: %v", err).Wrap(err)
	}

	log := s.logger
	pool, err := ants.NewPool(cfg.Size,
		ants.WithNonblocking(cfg.Nonblocking),
		ants.WithExpiryDuration(cfg.ExpiryDuration),
		ants.WithPanicHandler(func(p interface{}) {
			log.ErrorCtx(context.Background(), "worker pool task panicked", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return ErrConfigInvalid.Wrapf(err, "failed to create worker pool")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.pool = pool

	s.logger.DebugCtx(ctx, "worker pool initialised", zap.Int("size", cfg.Size))
	return nil
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool == nil {
		return ErrNotStarted.WithMsg("worker pool was not initialised")
	}
	s.running = true
	s.logger.InfoCtx(ctx, "worker pool started", zap.Int("size", s.cfg.Size))
	return nil
}

// Stop refuses new tasks and waits up to release_timeout for submitted ones
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	pool := s.pool
	timeout := s.cfg.ReleaseTimeout
	s.mu.Unlock()

	if !wasRunning || pool == nil {
		return nil
	}

	if err := pool.ReleaseTimeout(timeout); err != nil {
		s.logger.WarnCtx(ctx, "worker pool release timed out",
			zap.Duration("timeout", timeout), zap.Int("running", pool.Running()), zap.Error(err))
		return err
	}
	s.logger.InfoCtx(ctx, "worker pool stopped")
	return nil
}

// Destroy releases the pool if Stop did not
func (s *Service) Destroy(context.Context) error {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.running = false
	s.mu.Unlock()

	if pool != nil && !pool.IsClosed() {
		pool.Release()
	}
	return nil
}

// Submit queues fn. With nonblocking pools a full pool fails immediately.
func (s *Service) Submit(fn func()) error {
	s.mu.RLock()
	pool, running := s.pool, s.running
	s.mu.RUnlock()

	if !running || pool == nil {
		return ErrNotStarted
	}
	if err := pool.Submit(fn); err != nil {
		return ErrSubmitFailed.Wrap(err)
	}
	return nil
}

// Running returns the number of busy workers
func (s *Service) Running() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pool == nil {
		return 0
	}
	return s.pool.Running()
}

// Cap returns the pool size
func (s *Service) Cap() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pool == nil {
		return 0
	}
	return s.pool.Cap()
}

// Config returns the decoded configuration
func (s *Service) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

var _ component.Service = (*Service)(nil)
