package config

import "time"

// ChainfeedConfig is the root configuration for the daemon.
type ChainfeedConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Database DatabaseConfig `yaml:"database"`
	Hub      HubConfig      `yaml:"hub"`
	Poller   PollerConfig   `yaml:"poller"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this daemon instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// FeedsConfig holds the external feed endpoints.
type FeedsConfig struct {
	HeightURL string        `yaml:"height_url"`
	PriceURL  string        `yaml:"price_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DatabaseConfig holds the Postgres connection for durable samples.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// HubConfig holds broadcast hub settings.
type HubConfig struct {
	// BufferSize is the per-subscriber ring capacity. A subscriber that
	// falls further behind than this loses its oldest undelivered payloads.
	BufferSize int `yaml:"buffer_size"`
}

// PollerConfig holds poll loop settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig holds the WebSocket subscription server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MetricsConfig holds the operational HTTP server settings
// (health, recent blocks, Prometheus metrics).
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
