package config

import (
	"github.com/spf13/pflag"
)

// FlagSource reads command line flags that were explicitly set. Only bound
// flags are read, so defaults never shadow file or env values.
//
//	src := config.NewFlagSource(cmd.Flags(), config.PriorityFlag)
//	src.Bind("log-level", "logger.level")
type FlagSource struct {
	flags    *pflag.FlagSet
	priority int
	bindings map[string]string
}

// NewFlagSource creates a flag source over fs
func NewFlagSource(fs *pflag.FlagSet, priority int) *FlagSource {
	return &FlagSource{
		flags:    fs,
		priority: priority,
		bindings: make(map[string]string),
	}
}

// Bind maps a flag name to a config key
func (s *FlagSource) Bind(flagName, key string) *FlagSource {
	s.bindings[flagName] = key
	return s
}

func (s *FlagSource) Name() string {
	return "flags"
}

func (s *FlagSource) Priority() int {
	return s.priority
}

func (s *FlagSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	if s.flags == nil {
		return result, nil
	}

	for flagName, key := range s.bindings {
		f := s.flags.Lookup(flagName)
		if f == nil || !f.Changed {
			continue
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			result[key] = sv.GetSlice()
			continue
		}
		result[key] = f.Value.String()
	}
	return result, nil
}
