package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPITimeout       = 30 * time.Second
	DefaultClientName       = "todmarkets-go"
	DefaultAuthTimeout      = 15 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultBufferSize       = 100
)

func (c *Config) applyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	if c.Realtime.ClientName == "" {
		c.Realtime.ClientName = DefaultClientName
	}
	if c.Realtime.AuthTimeout == 0 {
		c.Realtime.AuthTimeout = DefaultAuthTimeout
	}
	if c.Realtime.HandshakeTimeout == 0 {
		c.Realtime.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Realtime.WriteTimeout == 0 {
		c.Realtime.WriteTimeout = DefaultWriteTimeout
	}
	if c.Realtime.BufferSize == 0 {
		c.Realtime.BufferSize = DefaultBufferSize
	}
}
