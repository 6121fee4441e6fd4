package application

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AppSection is the configuration key of AppConfig
const AppSection = "app"

// AppConfig holds host level settings. Service definitions live in the
// services section and are read by registry.ConfigStrategy.
type AppConfig struct {
	Name            string        `mapstructure:"name"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// Preload lists services resolved during Setup
	Preload []string `mapstructure:"preload"`
}

// DefaultShutdownTimeout bounds Shutdown when app.shutdown_timeout is unset
const DefaultShutdownTimeout = 10 * time.Second

func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "servicectl"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

func (c AppConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Millisecond)),
	)
}
