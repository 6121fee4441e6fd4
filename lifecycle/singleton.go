package lifecycle

import (
	"context"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
)

// Singleton builds one instance on the first GetService and returns it until
// Shutdown
type Singleton struct {
	provider InstanceProvider
	cfg      *component.Configuration
	instance component.Service
	// activating is set while Init or Start of the instance runs
	activating bool
}

// NewSingleton returns an unbound singleton controller
func NewSingleton() *Singleton {
	return &Singleton{}
}

func (s *Singleton) Init(provider InstanceProvider, cfg *component.Configuration) error {
	if err := checkBind(s.State(), provider); err != nil {
		return err
	}
	s.provider = provider
	s.cfg = orEmpty(cfg)
	return nil
}

// GetService returns the cached instance or activates it. A failed activation
// caches nothing, so the next call tries again.
func (s *Singleton) GetService(ctx context.Context) (component.Service, error) {
	if s.instance != nil {
		return s.instance, nil
	}
	if s.activating {
		return nil, ErrInvalidControllerState.WithMsg("singleton requested again while it is being activated")
	}

	s.activating = true
	inst, err := activate(ctx, s.provider, s.cfg)
	s.activating = false
	if err != nil {
		return nil, err
	}
	s.instance = inst
	return inst, nil
}

// Shutdown stops then destroys the instance if one exists and unbinds the
// controller. The controller ends unbound even when Stop or Destroy fail.
func (s *Singleton) Shutdown(ctx context.Context) error {
	inst := s.instance
	s.instance = nil
	s.provider = nil
	s.cfg = nil

	if inst == nil {
		return nil
	}
	return teardown(ctx, inst)
}

func (s *Singleton) State() State {
	switch {
	case s.instance != nil:
		return StateRunning
	case s.provider != nil:
		return StateBound
	default:
		return StateUnbound
	}
}

var _ Controller = (*Singleton)(nil)
