package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges its sources and exposes the result through viper
type Loader struct {
	sources      []ConfigSource
	mergedConfig map[string]interface{}
	v            *viper.Viper
	loadedFiles  []string
}

// NewLoader creates a loader with no sources
func NewLoader() *Loader {
	return &Loader{
		sources:      make([]ConfigSource, 0),
		mergedConfig: make(map[string]interface{}),
		v:            viper.New(),
		loadedFiles:  make([]string, 0),
	}
}

// AddSource adds a source; it takes effect on the next Load
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
}

// Load reads every source in priority order and rebuilds the merged view
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]interface{})
	loadedFiles := make([]string, 0)
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load config source %s: %w", source.Name(), err)
		}
		if fileSource, ok := source.(*FileSource); ok {
			loadedFiles = append(loadedFiles, fileSource.Path())
		}
		for key, value := range data {
			merged[key] = value
		}
	}

	l.mergedConfig = merged
	l.loadedFiles = loadedFiles
	l.syncToViper()
	return nil
}

func (l *Loader) syncToViper() {
	l.v = viper.New()
	for key, value := range unflattenMap(l.mergedConfig) {
		l.v.Set(key, value)
	}
}

// unflattenMap turns {"a.b.c": 1} into {"a": {"b": {"c": 1}}}
func unflattenMap(flat map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	// shorter keys first so a leaf never replaces a deeper section
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) < len(keys[j]) })

	for _, key := range keys {
		setNestedValue(result, key, flat[key])
	}
	return result
}

func setNestedValue(m map[string]interface{}, key string, value interface{}) {
	parts := splitKey(key)
	if len(parts) == 0 {
		return
	}

	current := m
	for _, k := range parts[:len(parts)-1] {
		nested, ok := current[k].(map[string]interface{})
		if !ok {
			nested = make(map[string]interface{})
			current[k] = nested
		}
		current = nested
	}

	last := parts[len(parts)-1]
	if m, ok := value.(map[string]interface{}); ok && len(m) == 0 {
		if _, exists := current[last].(map[string]interface{}); !exists {
			current[last] = make(map[string]interface{})
		}
		return
	}
	current[last] = value
}

func splitKey(key string) []string {
	parts := strings.Split(key, ".")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Unmarshal decodes the whole configuration into v
func (l *Loader) Unmarshal(v interface{}) error {
	return l.v.Unmarshal(v)
}

// UnmarshalKey decodes one section into v
func (l *Loader) UnmarshalKey(key string, v interface{}) error {
	return l.v.UnmarshalKey(key, v)
}

func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

func (l *Loader) AllSettings() map[string]interface{} {
	return l.v.AllSettings()
}

// GetLoadedFiles lists the file sources read by the last Load
func (l *Loader) GetLoadedFiles() []string {
	return l.loadedFiles
}

// GetViper exposes the merged viper instance
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// Reload re-reads every source
func (l *Loader) Reload() error {
	return l.Load()
}
