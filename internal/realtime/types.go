package realtime

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
)

// Envelope is the {event, data} wire structure used for all realtime
// messages, vendor and application level alike. Data may itself be a
// JSON-encoded string requiring a second decode pass.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AuthGrant is the broadcasting auth endpoint's response. It is consumed
// immediately to build the subscribe frame and not persisted.
type AuthGrant struct {
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}

// subscribePayload is the data portion of a pusher:subscribe frame.
// ChannelData is included only when the auth grant carried one.
type subscribePayload struct {
	Channel     string `json:"channel"`
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Full Pusher connect URL
	HandshakeTimeout time.Duration // Dial deadline
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       100,
	}
}

// ManagerConfig configures the channel manager.
type ManagerConfig struct {
	APIKey    string // Bearer token for the broadcasting auth endpoint
	DomainURL string // Backend base URL (any trailing /api is stripped for auth)

	ClientName       string        // "client" query parameter on the connect URL
	AuthTimeout      time.Duration // Timeout for the broadcasting auth POST
	HandshakeTimeout time.Duration // WebSocket dial deadline
	WriteTimeout     time.Duration // Write deadline for outbound frames
	BufferSize       int           // Inbound message channel capacity

	// SocketURL overrides the connect URL derived from the channel
	// details. Used for self-hosted Pusher-compatible servers and tests.
	SocketURL string

	// Handlers receive decoded application event payloads. Nil entries
	// fall back to log-only handlers.
	Handlers Handlers
}

// DefaultManagerConfig returns sensible defaults. APIKey and DomainURL
// must still be supplied by the caller.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ClientName:       "todmarkets-go",
		AuthTimeout:      15 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       100,
	}
}
