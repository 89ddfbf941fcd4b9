package server

import (
	"fmt"
	"time"
)

// Config holds pose stream settings.
type Config struct {
	Enabled        bool          `yaml:"enabled"`
	Addr           string        `yaml:"addr"`
	Path           string        `yaml:"path"`
	SendBuffer     int           `yaml:"send_buffer"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		Addr:           "127.0.0.1:8080",
		Path:           "/ws",
		SendBuffer:     64,
		WriteTimeout:   10 * time.Second,
		PingInterval:   25 * time.Second,
		MaxMessageSize: 1 << 20,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Enabled && c.Addr == "":
		return fmt.Errorf("%w: addr is required", ErrInvalidConfig)
	case c.Path == "" || c.Path[0] != '/':
		return fmt.Errorf("%w: path must start with /", ErrInvalidConfig)
	case c.SendBuffer < 1:
		return fmt.Errorf("%w: send_buffer must be positive", ErrInvalidConfig)
	case c.WriteTimeout <= 0 || c.PingInterval <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	case c.MaxMessageSize <= 0:
		return fmt.Errorf("%w: max_message_size must be positive", ErrInvalidConfig)
	}
	return nil
}
