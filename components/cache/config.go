package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is decoded from the service's component.Configuration
//
//	services:
//	  cache:
//	    config:
//	      ttl_seconds: 60        # 0 disables expiry
//	      addr: localhost:6379   # empty keeps entries in memory
//	      prefix: "app:"
type Config struct {
	TTLSeconds  *int          `mapstructure:"ttl_seconds"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	Prefix      string        `mapstructure:"prefix"`
	MaxEntries  int           `mapstructure:"max_entries"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	PingOnStart *bool         `mapstructure:"ping_on_start"`
}

// Default values
const (
	DefaultTTLSeconds  = 300
	DefaultMaxEntries  = 10000
	DefaultDialTimeout = 5 * time.Second
)

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.TTLSeconds == nil {
		ttl := DefaultTTLSeconds
		c.TTLSeconds = &ttl
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.PingOnStart == nil {
		ping := true
		c.PingOnStart = &ping
	}
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TTLSeconds, validation.Min(0)),
		validation.Field(&c.DB, validation.Min(0), validation.Max(15)),
		validation.Field(&c.MaxEntries, validation.Min(0)),
		validation.Field(&c.DialTimeout, validation.Min(time.Duration(0))),
	)
}

// TTL is the default entry lifetime; zero means entries never expire
func (c Config) TTL() time.Duration {
	if c.TTLSeconds == nil {
		return DefaultTTLSeconds * time.Second
	}
	return time.Duration(*c.TTLSeconds) * time.Second
}

// UsesRedis reports whether an address is configured
func (c Config) UsesRedis() bool {
	return c.Addr != ""
}
