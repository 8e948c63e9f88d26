package config

import "time"

// HTTPConfig holds REST server configuration.
type HTTPConfig struct {
	Host              string        `env:"BULKSCROLL_HTTP_HOST"`
	Port              string        `env:"BULKSCROLL_HTTP_PORT"`
	ReadTimeout       time.Duration `env:"BULKSCROLL_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"BULKSCROLL_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"BULKSCROLL_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"BULKSCROLL_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"BULKSCROLL_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"BULKSCROLL_HTTP_MAX_BODY_BYTES"`
}

func (c *HTTPConfig) applyDefaults() {
	if c.Port == "" {
		c.Port = "8081"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = 1 << 20
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
}
