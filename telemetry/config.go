package telemetry

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Section is the configuration key of Config
const Section = "telemetry"

// Exporter types
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNoop   = "noop"
)

// Config configures the OpenTelemetry SDK
type Config struct {
	Enabled        bool           `mapstructure:"enabled"`
	ServiceName    string         `mapstructure:"service_name"`
	ServiceVersion string         `mapstructure:"service_version"`
	Exporter       ExporterConfig `mapstructure:"exporter"`
	Sampler        SamplerConfig  `mapstructure:"sampler"`
	Batch          BatchConfig    `mapstructure:"batch"`
	Metrics        MetricsConfig  `mapstructure:"metrics"`
}

type ExporterConfig struct {
	Type     string            `mapstructure:"type"` // stdout, otlp, noop
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Headers  map[string]string `mapstructure:"headers"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"` // always_on, always_off, trace_id_ratio, parent_based_always_on
	Ratio float64 `mapstructure:"ratio"`
}

// BatchConfig switches between a batching and a synchronous span processor
type BatchConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	ScheduleDelay time.Duration `mapstructure:"schedule_delay"`
	ExportTimeout time.Duration `mapstructure:"export_timeout"`
}

type MetricsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

// DefaultConfig is disabled; enabling it exports to a local collector
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "servicectl",
		ServiceVersion: "dev",
		Exporter: ExporterConfig{
			Type:     ExporterOTLP,
			Endpoint: "localhost:4317",
			Insecure: true,
			Timeout:  10 * time.Second,
		},
		Sampler: SamplerConfig{Type: "parent_based_always_on", Ratio: 1.0},
		Batch: BatchConfig{
			Enabled:       true,
			ScheduleDelay: 5 * time.Second,
			ExportTimeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:        false,
			ExportInterval: 10 * time.Second,
		},
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.ServiceName, validation.Required),
		validation.Field(&c.Exporter, validation.By(func(interface{}) error {
			return validation.ValidateStruct(&c.Exporter,
				validation.Field(&c.Exporter.Type, validation.Required,
					validation.In(ExporterStdout, ExporterOTLP, ExporterNoop)),
				validation.Field(&c.Exporter.Endpoint,
					validation.When(c.Exporter.Type == ExporterOTLP, validation.Required)),
			)
		})),
		validation.Field(&c.Sampler, validation.By(func(interface{}) error {
			return validation.ValidateStruct(&c.Sampler,
				validation.Field(&c.Sampler.Type,
					validation.In("always_on", "always_off", "trace_id_ratio", "parent_based_always_on")),
				validation.Field(&c.Sampler.Ratio, validation.Min(0.0), validation.Max(1.0)),
			)
		})),
		validation.Field(&c.Metrics, validation.By(func(interface{}) error {
			if c.Metrics.Enabled && c.Metrics.ExportInterval <= 0 {
				return validation.NewError("validation_export_interval", "export_interval must be positive")
			}
			return nil
		})),
	)
}
