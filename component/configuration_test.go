package component

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmpty_IsShared(t *testing.T) {
	assert.Same(t, Empty(), Empty())
	assert.Equal(t, 0, Empty().Len())

	cfg, err := NewConfiguration(nil)
	require.NoError(t, err)
	assert.Same(t, Empty(), cfg)
}

func TestNewConfiguration_Primitives(t *testing.T) {
	cfg, err := NewConfiguration(map[string]interface{}{
		"ttl_seconds": 60,
		"name":        "cache",
		"enabled":     true,
		"ratio":       0.5,
		"timeout":     2 * time.Second,
		"hosts":       []string{"a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Len())
	assert.Equal(t, 60, cfg.GetInt("ttl_seconds"))
	assert.Equal(t, "cache", cfg.GetString("name"))
	assert.True(t, cfg.GetBool("enabled"))
	assert.Equal(t, 2*time.Second, cfg.GetDuration("timeout"))
	assert.Equal(t, []string{"a", "b"}, cfg.GetStringSlice("hosts"))
	assert.Equal(t, []string{"enabled", "hosts", "name", "ratio", "timeout", "ttl_seconds"}, cfg.Keys())

	v, ok := cfg.Get("ratio")
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)

	_, ok = cfg.Get("missing")
	assert.False(t, ok)
	assert.False(t, cfg.Has("missing"))
	assert.Equal(t, 0, cfg.GetInt("missing"))
}

func TestNewConfiguration_FlattensNestedMaps(t *testing.T) {
	cfg := MustConfiguration(map[string]interface{}{
		"redis": map[string]interface{}{
			"addr": "localhost:6379",
			"pool": map[interface{}]interface{}{"size": 10},
		},
	})

	assert.Equal(t, "localhost:6379", cfg.GetString("redis.addr"))
	assert.Equal(t, 10, cfg.GetInt("redis.pool.size"))
	assert.Equal(t, []string{"redis.addr", "redis.pool.size"}, cfg.Keys())
}

func TestNewConfiguration_RejectsNonPrimitive(t *testing.T) {
	tests := map[string]interface{}{
		"struct":       struct{}{},
		"pointer":      new(int),
		"nil":          nil,
		"func":         func() {},
		"nested slice": []interface{}{[]int{1}},
		"map slice":    []map[string]int{{"a": 1}},
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewConfiguration(map[string]interface{}{"bad": value})
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}

	assert.Panics(t, func() {
		MustConfiguration(map[string]interface{}{"bad": struct{}{}})
	})
}

func TestConfiguration_Immutable(t *testing.T) {
	input := map[string]interface{}{"ttl": 60, "hosts": []string{"a"}}
	cfg := MustConfiguration(input)

	input["ttl"] = 1
	input["hosts"].([]string)[0] = "mutated"
	assert.Equal(t, 60, cfg.GetInt("ttl"))
	assert.Equal(t, []string{"a"}, cfg.GetStringSlice("hosts"))

	got, _ := cfg.Get("hosts")
	got.([]string)[0] = "mutated"
	assert.Equal(t, []string{"a"}, cfg.GetStringSlice("hosts"))

	m := cfg.AsMap()
	m["ttl"] = 2
	assert.Equal(t, 60, cfg.GetInt("ttl"))
}

func TestConfiguration_Unmarshal(t *testing.T) {
	type redisCfg struct {
		Addr string `mapstructure:"addr"`
	}
	type cacheCfg struct {
		TTLSeconds int           `mapstructure:"ttl_seconds"`
		Timeout    time.Duration `mapstructure:"timeout"`
		Redis      redisCfg      `mapstructure:"redis"`
		Tags       []string      `mapstructure:"tags"`
	}

	cfg := MustConfiguration(map[string]interface{}{
		"ttl_seconds": "60",
		"timeout":     "1s",
		"redis.addr":  "127.0.0.1:6379",
		"tags":        "a,b",
	})

	var out cacheCfg
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, 60, out.TTLSeconds)
	assert.Equal(t, time.Second, out.Timeout)
	assert.Equal(t, "127.0.0.1:6379", out.Redis.Addr)
	assert.Equal(t, []string{"a", "b"}, out.Tags)
}

func TestConfiguration_UnmarshalError(t *testing.T) {
	cfg := MustConfiguration(map[string]interface{}{"ttl_seconds": "sixty"})

	var out struct {
		TTLSeconds int `mapstructure:"ttl_seconds"`
	}
	err := cfg.Unmarshal(&out)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestConfiguration_Equal(t *testing.T) {
	a := MustConfiguration(map[string]interface{}{"ttlSeconds": 60})
	b := MustConfiguration(map[string]interface{}{"ttlSeconds": 60})
	c := MustConfiguration(map[string]interface{}{"ttlSeconds": 30})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, Empty().Equal(Empty()))
}

func TestConfigurationFromSection(t *testing.T) {
	v := viper.New()
	v.Set("services.cache.config", map[string]interface{}{
		"ttl_seconds": 60,
		"redis":       map[string]interface{}{"addr": "x:1"},
	})
	v.Set("services.scalar", "oops")

	cfg, err := ConfigurationFromSection(v, "services.cache.config")
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.GetInt("ttl_seconds"))
	assert.Equal(t, "x:1", cfg.GetString("redis.addr"))

	missing, err := ConfigurationFromSection(v, "services.none")
	require.NoError(t, err)
	assert.Same(t, Empty(), missing)

	_, err = ConfigurationFromSection(v, "services.scalar")
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}
