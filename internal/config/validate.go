package config

import "errors"

// Validation errors for required credentials. Both are fatal at startup.
var (
	ErrMissingAPIKey    = errors.New("missing API_KEY: set it in the environment or .env file")
	ErrMissingDomainURL = errors.New("missing DOMAIN_URL: set it in the environment or .env file")
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.DomainURL == "" {
		return ErrMissingDomainURL
	}

	if c.Realtime.BufferSize < 1 {
		return errors.New("realtime.buffer_size must be >= 1")
	}

	return nil
}
