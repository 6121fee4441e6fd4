// Package cache is a managed cache service backed by redis, or by process
// memory when no address is configured.
//
//	catalog.MustRegister("cache", cache.Provider())
//	svc, _ := manager.Resolve[*cache.Service](ctx, "cache")
//	_ = svc.Set(ctx, "k", []byte("v"))
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service implements component.Service
type Service struct {
	mu      sync.RWMutex
	cfg     Config
	store   Store
	running bool
	logger  logger.CtxLogger
	loads   singleflight.Group
}

// New returns an uninitialised cache service
func New() *Service {
	return &Service{logger: logger.GetLogger("cache")}
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
		return ErrConfigInvalid.WithMsgf("invalid cache configuration: %v", err).Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	if cfg.UsesRedis() {
		s.store = newOwnedRedisStore("redis", &redis.Options{
			Addr:        cfg.Addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DialTimeout: cfg.DialTimeout,
		}, cfg.Prefix)
	} else {
		s.store = NewMemoryStore("memory", cfg.MaxEntries)
	}

	s.logger.DebugCtx(ctx, "cache initialised",
		zap.String("store", s.store.Name()),
		zap.Duration("ttl", cfg.TTL()))
	return nil
}

// Start pings redis unless ping_on_start is false
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rs, ok := s.store.(*RedisStore); ok && *s.cfg.PingOnStart {
		if err := rs.Ping(ctx); err != nil {
			return err
		}
	}
	s.running = true
	s.logger.InfoCtx(ctx, "cache started", zap.String("store", s.store.Name()))
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.logger.InfoCtx(ctx, "cache stopped")
	return nil
}

// Destroy releases the store. Safe on a service that never started.
func (s *Service) Destroy(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

// Config returns the decoded configuration
func (s *Service) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Service) activeStore() (Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running || s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Set stores value with the configured TTL
func (s *Service) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, s.Config().TTL())
}

// SetWithTTL stores value; ttl <= 0 means no expiry
func (s *Service) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	store, err := s.activeStore()
	if err != nil {
		return err
	}
	return store.Set(ctx, key, value, ttl)
}

// Get returns ErrCacheMiss for absent or expired keys
func (s *Service) Get(ctx context.Context, key string) ([]byte, error) {
	store, err := s.activeStore()
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, key)
}

func (s *Service) Delete(ctx context.Context, key string) error {
	store, err := s.activeStore()
	if err != nil {
		return err
	}
	return store.Delete(ctx, key)
}

func (s *Service) DeleteByPrefix(ctx context.Context, prefix string) error {
	store, err := s.activeStore()
	if err != nil {
		return err
	}
	return store.DeleteByPrefix(ctx, prefix)
}

func (s *Service) Exists(ctx context.Context, key string) bool {
	store, err := s.activeStore()
	if err != nil {
		return false
	}
	return store.Exists(ctx, key)
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Concurrent misses on the same key share one load call.
func (s *Service) GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	value, err := s.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	v, err, _ := s.loads.Do(key, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.Set(ctx, key, loaded); err != nil {
			s.logger.WarnCtx(ctx, "cache write after load failed", zap.String("key", key), zap.Error(err))
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	out := v.([]byte)
	return append([]byte(nil), out...), nil
}

var _ component.Service = (*Service)(nil)
