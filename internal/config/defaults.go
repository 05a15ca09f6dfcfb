package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHeightURL     = "https://blockchain.info/latestblock"
	DefaultPriceURL      = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd"
	DefaultFeedTimeout   = 10 * time.Second
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultHubBufferSize = 64
	DefaultPollInterval  = 60 * time.Second
	DefaultServerPort    = 8081
	DefaultWriteTimeout  = 10 * time.Second
	DefaultMetricsPort   = 8080
	DefaultMetricsPath   = "/metrics"
)

func (c *ChainfeedConfig) applyDefaults() {
	// Feed defaults
	if c.Feeds.HeightURL == "" {
		c.Feeds.HeightURL = DefaultHeightURL
	}
	if c.Feeds.PriceURL == "" {
		c.Feeds.PriceURL = DefaultPriceURL
	}
	if c.Feeds.Timeout == 0 {
		c.Feeds.Timeout = DefaultFeedTimeout
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Hub defaults
	if c.Hub.BufferSize == 0 {
		c.Hub.BufferSize = DefaultHubBufferSize
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
