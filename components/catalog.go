// Package components collects the built-in service types.
package components

import (
	"github.com/KOMKZ/go-yogan-servicemgr/components/cache"
	"github.com/KOMKZ/go-yogan-servicemgr/components/scheduler"
	"github.com/KOMKZ/go-yogan-servicemgr/components/workerpool"
	"github.com/KOMKZ/go-yogan-servicemgr/registry"
)

// Type names accepted in services.<name>.type
const (
	TypeCache      = "cache"
	TypeScheduler  = "scheduler"
	TypeWorkerPool = "workerpool"
)

// Catalog returns a catalog with every built-in type registered
func Catalog() *registry.Catalog {
	return registry.NewCatalog().
		MustRegister(TypeCache, cache.Provider()).
		MustRegister(TypeScheduler, scheduler.Provider()).
		MustRegister(TypeWorkerPool, workerpool.Provider())
}
