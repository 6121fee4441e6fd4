package lifecycle

import (
	"context"

	"github.com/KOMKZ/go-yogan-servicemgr/component"
	"go.uber.org/multierr"
)

// Transient builds, initialises and starts a new instance on every
// GetService. It remembers what it built so Shutdown can tear it all down.
type Transient struct {
	provider  InstanceProvider
	cfg       *component.Configuration
	instances []component.Service
}

// NewTransient returns an unbound transient controller
func NewTransient() *Transient {
	return &Transient{}
}

func (t *Transient) Init(provider InstanceProvider, cfg *component.Configuration) error {
	if err := checkBind(t.State(), provider); err != nil {
		return err
	}
	t.provider = provider
	t.cfg = orEmpty(cfg)
	return nil
}

func (t *Transient) GetService(ctx context.Context) (component.Service, error) {
	inst, err := activate(ctx, t.provider, t.cfg)
	if err != nil {
		return nil, err
	}
	t.instances = append(t.instances, inst)
	return inst, nil
}

// Shutdown tears instances down in creation order
func (t *Transient) Shutdown(ctx context.Context) error {
	instances := t.instances
	t.instances = nil
	t.provider = nil
	t.cfg = nil

	var err error
	for _, inst := range instances {
		err = multierr.Append(err, teardown(ctx, inst))
	}
	return err
}

func (t *Transient) State() State {
	switch {
	case len(t.instances) > 0:
		return StateRunning
	case t.provider != nil:
		return StateBound
	default:
		return StateUnbound
	}
}

// Len returns how many live instances the controller owns
func (t *Transient) Len() int {
	return len(t.instances)
}

var _ Controller = (*Transient)(nil)
