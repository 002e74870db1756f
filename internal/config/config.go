package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all SDK configuration.
type Config struct {
	Logging LogConfig
	Events  EventsConfig
	Sink    SinkConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"OSSA_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"OSSA_LOG_DEV" default:"false"`
}

// EventsConfig holds event emitter configuration.
type EventsConfig struct {
	Source        string        `envconfig:"OSSA_EVENT_SOURCE" default:"ossa-go"`
	BatchSize     int           `envconfig:"OSSA_EVENT_BATCH_SIZE" default:"1"`
	FlushInterval time.Duration `envconfig:"OSSA_EVENT_FLUSH_INTERVAL" default:"0s"`
	BufferSize    int           `envconfig:"OSSA_EVENT_BUFFER_SIZE" default:"1000"`
}

// SinkConfig holds HTTP sink configuration. URL empty means stdout.
type SinkConfig struct {
	URL               string        `envconfig:"OSSA_SINK_URL" default:""`
	Mode              string        `envconfig:"OSSA_SINK_MODE" default:"structured"`
	Timeout           time.Duration `envconfig:"OSSA_SINK_TIMEOUT" default:"10s"`
	Retries           int           `envconfig:"OSSA_SINK_RETRIES" default:"3"`
	RequestsPerSecond float64       `envconfig:"OSSA_SINK_RPS" default:"0"`
	Burst             int           `envconfig:"OSSA_SINK_BURST" default:"1"`
	TripAfter         uint32        `envconfig:"OSSA_SINK_TRIP_AFTER" default:"0"`
	Cooldown          time.Duration `envconfig:"OSSA_SINK_COOLDOWN" default:"60s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level: "info",
		},
		Events: EventsConfig{
			Source:     "ossa-go",
			BatchSize:  1,
			BufferSize: 1000,
		},
		Sink: SinkConfig{
			Mode:     "structured",
			Timeout:  10 * time.Second,
			Retries:  3,
			Burst:    1,
			Cooldown: 60 * time.Second,
		},
	}
}
