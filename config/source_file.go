package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// FileSource reads one yaml/json/toml file through viper. A missing file
// loads as empty.
type FileSource struct {
	path     string
	priority int
}

// NewFileSource creates a file source
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{
		path:     path,
		priority: priority,
	}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

func (s *FileSource) Priority() int {
	return s.priority
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Load() (map[string]interface{}, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, fmt.Errorf("stat config file %s: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}

	return flattenMap("", v.AllSettings()), nil
}

// flattenMap turns {"services": {"cache": {"type": "cache"}}} into
// {"services.cache.type": "cache"}. Empty maps are kept as values so a
// section such as "cache: {}" still exists after merging.
func flattenMap(prefix string, data map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		nested, ok := value.(map[string]interface{})
		if !ok || len(nested) == 0 {
			result[fullKey] = value
			continue
		}
		for k, v := range flattenMap(fullKey, nested) {
			result[k] = v
		}
	}

	return result
}
