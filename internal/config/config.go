package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all settings for the TOD Markets clients. It is passed
// explicitly to constructors; nothing reads the environment after load.
type Config struct {
	// APIKey is the bearer token for all authenticated calls.
	APIKey string `yaml:"api_key"`

	// DomainURL is the base URL of the TOD Markets backend
	// (e.g. https://app.todmarkets.example).
	DomainURL string `yaml:"domain_url"`

	API      APIConfig      `yaml:"api"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

// APIConfig tunes the REST client.
type APIConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// RealtimeConfig tunes the realtime channel manager.
type RealtimeConfig struct {
	// ClientName is sent as the "client" query parameter on the Pusher
	// connect URL.
	ClientName string `yaml:"client_name"`

	// AuthTimeout bounds the broadcasting auth POST.
	AuthTimeout time.Duration `yaml:"auth_timeout"`

	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`

	// WriteTimeout is the write deadline for outbound frames.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// BufferSize is the inbound message channel capacity.
	BufferSize int `yaml:"buffer_size"`
}

// FromEnv builds a Config from the environment. A .env file in the
// working directory is loaded first when present (best effort, matching
// local-development setups where credentials live in .env).
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:    os.Getenv("API_KEY"),
		DomainURL: os.Getenv("DOMAIN_URL"),
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
