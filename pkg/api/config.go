package api

import "time"

// DefaultPort is the port the command surface listens on.
const DefaultPort = 8000

// Config configures the HTTP server that carries the command surface,
// node registration and the health endpoints.
type Config struct {
	// Port is the HTTP port for all endpoints, 8000 unless set.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout bounds reading an entire request including the body.
	// Zero means no limit; the write command streams uploads of unbounded
	// size, so only set this when clients are known to be small.
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing a response. Zero means no limit; the
	// read command streams downloads of unbounded size.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is how long a keep-alive connection may sit idle
	// before the server closes it. A minute unless set.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// applyDefaults fills in zero values. Read and write timeouts stay at
// zero so file transfers are never cut off mid-stream.
func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
