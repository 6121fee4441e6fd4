package lifecycle

import (
	"sort"
	"sync"
)

// Built-in controller kinds
const (
	KindSingleton = "singleton"
	KindTransient = "transient"
)

// Factory creates a fresh, unbound controller
type Factory func() Controller

var (
	knownMu sync.RWMutex
	known   = map[string]Factory{
		KindSingleton: func() Controller { return NewSingleton() },
		KindTransient: func() Controller { return NewTransient() },
	}
)

// NewController creates a controller of the named kind.
// An empty kind means singleton.
func NewController(kind string) (Controller, error) {
	if kind == "" {
		kind = KindSingleton
	}

	knownMu.RLock()
	f, ok := known[kind]
	knownMu.RUnlock()

	if !ok {
		return nil, ErrUnknownLifecycle.WithMsgf("unknown lifecycle controller kind %q", kind).WithData("kind", kind)
	}
	return f(), nil
}

// RegisterKind adds a custom controller kind. Existing kinds cannot be replaced.
func RegisterKind(kind string, f Factory) error {
	if kind == "" || f == nil {
		return ErrInvalidProvider.WithMsg("controller kind and factory are required")
	}

	knownMu.Lock()
	defer knownMu.Unlock()

	if _, ok := known[kind]; ok {
		return ErrInvalidProvider.WithMsgf("lifecycle controller kind %q is already registered", kind)
	}
	known[kind] = f
	return nil
}

// Kinds lists registered kinds, sorted
func Kinds() []string {
	knownMu.RLock()
	defer knownMu.RUnlock()

	kinds := make([]string, 0, len(known))
	for k := range known {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
