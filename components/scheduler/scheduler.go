// Package scheduler is a managed periodic job service built on gocron.
//
//	services:
//	  jobs:
//	    type: scheduler
//	    config:
//	      interval: 30s          # default interval for AddJob
//	      stop_timeout: 10s      # how long Stop waits for running jobs
//	      singleton: true        # never run two copies of a job at once
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"github.com/KOMKZ/go-yogan-servicemgr/errcode"
	"github.com/KOMKZ/go-yogan-servicemgr/lifecycle"
	"github.com/KOMKZ/go-yogan-servicemgr/logger"
	"github.com/go-co-op/gocron/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModuleCode scheduler errors are 62xxxx
const ModuleCode = 62

var (
	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, 1, "scheduler", "error.scheduler.config_invalid", "invalid scheduler configuration"))

	// ErrJobInvalid the job definition was rejected by gocron
	ErrJobInvalid = errcode.Register(errcode.New(
		ModuleCode, 2, "scheduler", "error.scheduler.job_invalid", "invalid scheduler job"))

	// ErrNotInitialised AddJob was called before Init or after Destroy
	ErrNotInitialised = errcode.Register(errcode.New(
		ModuleCode, 3, "scheduler", "error.scheduler.not_initialised", "scheduler is not initialised"))
)

// Config is decoded from the service configuration
type Config struct {
	Interval    time.Duration `mapstructure:"interval"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
	Singleton   bool          `mapstructure:"singleton"`
}

// Default values
const (
	DefaultInterval    = time.Minute
	DefaultStopTimeout = 30 * time.Second
)

func (c *Config) ApplyDefaults() {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = DefaultStopTimeout
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Interval, validation.Min(time.Millisecond)),
		validation.Field(&c.StopTimeout, validation.Min(time.Duration(0))),
	)
}

// Service implements component.Service
type Service struct {
	mu        sync.Mutex
	cfg       Config
	scheduler gocron.Scheduler
	jobs      map[string]uuid.UUID
	running   bool
	logger    logger.CtxLogger
}

// New returns an uninitialised scheduler service
func New() *Service {
	return &Service{
		jobs:   make(map[string]uuid.UUID),
		logger: logger.GetLogger("scheduler"),
	}
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
		return ErrConfigInvalid.WithMsgf("invalid scheduler configuration: %v", err).Wrap(err)
	}

	sched, err := gocron.NewScheduler(gocron.WithStopTimeout(cfg.StopTimeout))
	if err != nil {
		return ErrConfigInvalid.Wrapf(err, "failed to create scheduler")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.scheduler = sched

	s.logger.DebugCtx(ctx, "scheduler initialised",
		zap.Duration("interval", cfg.Interval), zap.Bool("singleton", cfg.Singleton))
	return nil
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return ErrNotInitialised
	}
	s.scheduler.Start()
	s.running = true
	s.logger.InfoCtx(ctx, "scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop stops scheduling and waits up to stop_timeout for running jobs.
// Jobs stay registered.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	sched := s.scheduler
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if sched == nil || !wasRunning {
		return nil
	}
	// jobs may call back into the service, so wait without holding the lock
	if err := sched.StopJobs(); err != nil {
		s.logger.WarnCtx(ctx, "scheduler stop timed out", zap.Duration("timeout", s.Config().StopTimeout), zap.Error(err))
		return err
	}
	s.logger.InfoCtx(ctx, "scheduler stopped")
	return nil
}

// Destroy shuts the scheduler down and forgets every job
func (s *Service) Destroy(context.Context) error {
	s.mu.Lock()
	sched := s.scheduler
	s.scheduler = nil
	s.running = false
	s.jobs = make(map[string]uuid.UUID)
	s.mu.Unlock()

	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

// AddJob runs fn every configured interval
func (s *Service) AddJob(name string, fn func(context.Context)) (uuid.UUID, error) {
	return s.add(name, gocron.DurationJob(s.Config().Interval), fn)
}

// AddIntervalJob runs fn every interval
func (s *Service) AddIntervalJob(name string, interval time.Duration, fn func(context.Context)) (uuid.UUID, error) {
	return s.add(name, gocron.DurationJob(interval), fn)
}

// AddCronJob runs fn on a crontab schedule; withSeconds enables a leading
// seconds field
func (s *Service) AddCronJob(name, expr string, withSeconds bool, fn func(context.Context)) (uuid.UUID, error) {
	return s.add(name, gocron.CronJob(expr, withSeconds), fn)
}

func (s *Service) add(name string, def gocron.JobDefinition, fn func(context.Context)) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return uuid.Nil, ErrNotInitialised
	}
	if name == "" || fn == nil {
		return uuid.Nil, ErrJobInvalid.WithMsg("job name and function are required")
	}
	if _, exists := s.jobs[name]; exists {
		return uuid.Nil, ErrJobInvalid.WithMsgf("job %q already exists", name).WithData("job", name)
	}

	opts := []gocron.JobOption{gocron.WithName(name)}
	if s.cfg.Singleton {
		opts = append(opts, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	}

	log := s.logger
	job, err := s.scheduler.NewJob(def, gocron.NewTask(func() {
		ctx := context.Background()
		log.DebugCtx(ctx, "scheduler job run", zap.String("job", name))
		fn(ctx)
	}), opts...)
	if err != nil {
		return uuid.Nil, ErrJobInvalid.Wrapf(err, "failed to add job %q", name)
	}

	s.jobs[name] = job.ID()
	return job.ID(), nil
}

// RemoveJob removes a job by name
func (s *Service) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.jobs[name]
	if !ok || s.scheduler == nil {
		return ErrJobInvalid.WithMsgf("job %q not found", name).WithData("job", name)
	}
	if err := s.scheduler.RemoveJob(id); err != nil {
		return ErrJobInvalid.Wrapf(err, "failed to remove job %q", name)
	}
	delete(s.jobs, name)
	return nil
}

// JobNames lists registered jobs
func (s *Service) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Config returns the decoded configuration
func (s *Service) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

var _ component.Service = (*Service)(nil)
