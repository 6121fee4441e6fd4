package component

import (
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Configuration is an immutable, flat bag of primitive values handed to
// Service.Init.
//
// Keys are dot separated ("redis.addr"); nested maps passed to
// NewConfiguration are flattened. Values are strings, booleans, numbers,
// durations or slices of those. A Configuration never changes after
// construction: the input is copied and accessors return copies of slices.
type Configuration struct {
	values map[string]interface{}
}

var emptyConfiguration = &Configuration{values: map[string]interface{}{}}

// Empty returns the shared empty configuration
func Empty() *Configuration {
	return emptyConfiguration
}

// NewConfiguration validates and copies values
func NewConfiguration(values map[string]interface{}) (*Configuration, error) {
	if len(values) == 0 {
		return emptyConfiguration, nil
	}

	flat := make(map[string]interface{}, len(values))
	if err := flatten("", values, flat); err != nil {
		return nil, err
	}
	return &Configuration{values: flat}, nil
}

// MustConfiguration is NewConfiguration for literals; it panics on invalid input
func MustConfiguration(values map[string]interface{}) *Configuration {
	cfg, err := NewConfiguration(values)
	if err != nil {
		panic(err)
	}
	return cfg
}

// SectionGetter is satisfied by config.Loader and *viper.Viper
type SectionGetter interface {
	Get(key string) interface{}
}

// ConfigurationFromSection builds a Configuration from one section of a
// loaded configuration. A missing section yields Empty().
func ConfigurationFromSection(src SectionGetter, key string) (*Configuration, error) {
	raw := src.Get(key)
	if raw == nil {
		return emptyConfiguration, nil
	}
	section, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, ErrInvalidConfiguration.WithMsgf("configuration section %q is not a map", key).Wrap(err)
	}
	return NewConfiguration(section)
}

func flatten(prefix string, in map[string]interface{}, out map[string]interface{}) error {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if nested, ok := toStringMap(v); ok {
			if err := flatten(key, nested, out); err != nil {
				return err
			}
			continue
		}

		copied, err := copyValue(key, v)
		if err != nil {
			return err
		}
		out[key] = copied
	}
	return nil
}

func toStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[cast.ToString(k)] = val
		}
		return out, true
	}
	return nil, false
}

func copyValue(key string, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, ErrInvalidConfiguration.WithMsgf("configuration key %q has a nil value", key)
	}
	if _, ok := v.(time.Duration); ok {
		return v, nil
	}

	rv := reflect.ValueOf(v)
	if isPrimitiveKind(rv.Kind()) {
		return v, nil
	}

	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		dup := reflect.MakeSlice(reflect.SliceOf(rv.Type().Elem()), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			if elem.Kind() == reflect.Interface {
				elem = elem.Elem()
			}
			if !elem.IsValid() || !isPrimitiveKind(elem.Kind()) {
				return nil, ErrInvalidConfiguration.
					WithMsgf("configuration key %q holds a non-primitive slice element", key).
					WithData("key", key)
			}
			dup.Index(i).Set(rv.Index(i))
		}
		return dup.Interface(), nil
	}

	return nil, ErrInvalidConfiguration.
		WithMsgf("configuration key %q has unsupported type %T", key, v).
		WithData("key", key)
}

func isPrimitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Get returns the raw value for key
func (c *Configuration) Get(key string) (interface{}, bool) {
	v, ok := c.values[key]
	if !ok {
		return nil, false
	}
	return copySlice(v), true
}

// Has reports whether key is present
func (c *Configuration) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Len returns the number of keys
func (c *Configuration) Len() int {
	return len(c.values)
}

// Keys returns the keys in sorted order
func (c *Configuration) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetString returns "" when the key is missing or not convertible
func (c *Configuration) GetString(key string) string {
	return cast.ToString(c.values[key])
}

// GetInt returns 0 when the key is missing or not convertible
func (c *Configuration) GetInt(key string) int {
	return cast.ToInt(c.values[key])
}

// GetBool returns false when the key is missing or not convertible
func (c *Configuration) GetBool(key string) bool {
	return cast.ToBool(c.values[key])
}

// GetDuration accepts durations, duration strings ("30s") and integers (ns)
func (c *Configuration) GetDuration(key string) time.Duration {
	return cast.ToDuration(c.values[key])
}

// GetStringSlice converts slices and comma-free strings to []string
func (c *Configuration) GetStringSlice(key string) []string {
	return cast.ToStringSlice(c.values[key])
}

// AsMap returns a flat copy of all values
func (c *Configuration) AsMap() map[string]interface{} {
	out := make(map[string]interface{}, len(c.values))
	for k, v := range c.values {
		out[k] = copySlice(v)
	}
	return out
}

// Unmarshal decodes the configuration into a struct using mapstructure tags.
// Dotted keys become nested structs; strings are weakly converted.
func (c *Configuration) Unmarshal(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(c.nested()); err != nil {
		return ErrInvalidConfiguration.WithMsg("failed to decode service configuration").Wrap(err)
	}
	return nil
}

// Equal compares values, not identity
func (c *Configuration) Equal(other *Configuration) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return reflect.DeepEqual(c.values, other.values)
}

func (c *Configuration) nested() map[string]interface{} {
	root := make(map[string]interface{})
	for key, v := range c.values {
		parts := strings.Split(key, ".")
		cur := root
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = copySlice(v)
	}
	return root
}

func copySlice(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return v
	}
	dup := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(dup, rv)
	return dup.Interface()
}
