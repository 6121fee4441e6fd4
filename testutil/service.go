// Package testutil provides recording services for lifecycle assertions.
//
// Usage:
//
//	rec := testutil.NewRecorder()
//	provider := testutil.NewCountingProvider(rec, "cache")
//	strategy.RegisterService("cache", provider, lifecycle.NewSingleton(), registry.WithConfig(cfg))
//	...
//	assert.Equal(t, []string{"cache#1.init", "cache#1.start"}, rec.Calls())
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
)

// Recorder collects lifecycle calls across every instance sharing it
type Recorder struct {
	mu    sync.Mutex
	calls []string
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

// Calls returns a copy of the recorded calls, e.g. "cache#1.init"
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many times call was recorded
func (r *Recorder) Count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Reset drops all calls
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// RecordingService records every lifecycle call and can be told to fail
type RecordingService struct {
	ID  string
	rec *Recorder

	InitErr    error
	StartErr   error
	StopErr    error
	DestroyErr error

	Config *component.Configuration
}

// NewRecordingService creates a service that records into rec under id
func NewRecordingService(rec *Recorder, id string) *RecordingService {
	return &RecordingService{ID: id, rec: rec}
}

func (s *RecordingService) Init(_ context.Context, cfg *component.Configuration) error {
	s.rec.add(s.ID + ".init")
	s.Config = cfg
	return s.InitErr
}

func (s *RecordingService) Start(context.Context) error {
	s.rec.add(s.ID + ".start")
	return s.StartErr
}

func (s *RecordingService) Stop(context.Context) error {
	s.rec.add(s.ID + ".stop")
	return s.StopErr
}

func (s *RecordingService) Destroy(context.Context) error {
	s.rec.add(s.ID + ".destroy")
	return s.DestroyErr
}

// CountingProvider creates RecordingServices named "<name>#<n>" and counts calls.
// It satisfies lifecycle.InstanceProvider.
type CountingProvider struct {
	name string
	rec  *Recorder

	mu    sync.Mutex
	count int

	// Err, when set, is returned instead of building an instance
	Err error
	// Configure, when set, is applied to each new instance
	Configure func(*RecordingService)
	// Last is the most recently built instance
	Last *RecordingService
}

// NewCountingProvider creates a provider recording into rec
func NewCountingProvider(rec *Recorder, name string) *CountingProvider {
	return &CountingProvider{name: name, rec: rec}
}

func (p *CountingProvider) CreateServiceInstance() (component.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	if p.Err != nil {
		return nil, p.Err
	}

	svc := NewRecordingService(p.rec, fmt.Sprintf("%s#%d", p.name, p.count))
	if p.Configure != nil {
		p.Configure(svc)
	}
	p.Last = svc
	return svc, nil
}

// Count returns how many times the provider was invoked
func (p *CountingProvider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
