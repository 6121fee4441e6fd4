// Package component defines the contract every managed service implements.
// It is the lowest package in the module and imports nothing from it except
// errcode.
package component

import "context"

// Service is a component whose lifecycle is driven by a lifecycle controller.
//
// Lifecycle: Init → Start → Stop → Destroy. Each method is called at most once
// per instance by the controller that owns it, synchronously, on the caller's
// goroutine. The context carries request-scoped values (trace id) only.
type Service interface {
	// Init receives the configuration captured at registration time.
	// Allocate resources here; do not start background work.
	Init(ctx context.Context, cfg *Configuration) error

	// Start begins serving. A blocking Start blocks the resolving caller.
	Start(ctx context.Context) error

	// Stop ends serving.
	Stop(ctx context.Context) error

	// Destroy releases whatever Init allocated.
	Destroy(ctx context.Context) error
}

// BaseService implements Service with no-ops. Embed it and override only the
// methods a service needs.
//
//	type Cache struct {
//	    component.BaseService
//	    ttl time.Duration
//	}
//
//	func (c *Cache) Init(ctx context.Context, cfg *component.Configuration) error {
//	    c.ttl = cfg.GetDuration("ttl")
//	    return nil
//	}
type BaseService struct{}

func (BaseService) Init(context.Context, *Configuration) error { return nil }
func (BaseService) Start(context.Context) error                { return nil }
func (BaseService) Stop(context.Context) error                 { return nil }
func (BaseService) Destroy(context.Context) error              { return nil }

var _ Service = BaseService{}
