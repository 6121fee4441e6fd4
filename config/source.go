// Package config merges configuration from files, environment variables and
// command line flags into one viper-backed view.
//
// Sources are applied from the lowest priority to the highest; a key set by a
// later source replaces the same key from an earlier one.
package config

// ConfigSource is one origin of configuration data
type ConfigSource interface {
	// Name identifies the source in logs and errors
	Name() string

	// Priority orders sources; higher wins
	Priority() int

	// Load returns flat, dot separated keys ("services.cache.type")
	Load() (map[string]interface{}, error)
}

// Suggested priorities
const (
	PriorityDefault = 1
	PriorityFile    = 10
	PriorityEnvFile = 20
	PriorityEnv     = 50
	PriorityFlag    = 100
)
