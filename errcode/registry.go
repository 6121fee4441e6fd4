package errcode

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry guards against two modules claiming the same code
type Registry struct {
	mu     sync.RWMutex
	codes  map[int]string // code -> module:msgKey
	locked bool
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty code registry
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

// Register records err in the global registry and returns it, so sentinels
// can be declared as `var ErrX = errcode.Register(errcode.New(...))`.
// Panics on a conflicting registration.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register records err. Re-registering the same code with the same
// module:msgKey is idempotent; a different key for the same code panics.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		panic(fmt.Sprintf("errcode registry is locked, cannot register code %d", err.Code()))
	}

	code := err.Code()
	key := err.Module() + ":" + err.MsgKey()

	if existing, ok := r.codes[code]; ok {
		if existing != key {
			panic(fmt.Sprintf(
				"error code conflict: code %d is already registered as %s, cannot register as %s",
				code, existing, key,
			))
		}
		return err
	}

	r.codes[code] = key
	return err
}

// Lock rejects further registrations
func (r *Registry) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = true
}

// Unlock allows registrations again
func (r *Registry) Unlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = false
}

// IsLocked reports whether the registry is locked
func (r *Registry) IsLocked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

// GetAll returns a copy of all registered codes
func (r *Registry) GetAll() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make(map[int]string, len(r.codes))
	for k, v := range r.codes {
		codes[k] = v
	}
	return codes
}

// Count returns the number of registered codes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Entry is one registered code
type Entry struct {
	Code   int
	Module string
	MsgKey string
}

// Entries returns the registered codes in ascending order
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.codes))
	for code, key := range r.codes {
		module, msgKey, _ := strings.Cut(key, ":")
		entries = append(entries, Entry{Code: code, Module: module, MsgKey: msgKey})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}

// RegisteredEntries lists every code registered through Register
func RegisteredEntries() []Entry {
	return globalRegistry.Entries()
}
