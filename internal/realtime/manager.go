package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/todmarkets/todmarkets-go/internal/api"
)

// Manager owns one private-channel connection: it fetches the channel
// credentials, performs the Pusher subscribe handshake, and routes
// decoded application events to handlers. One manager, one connection,
// one execution context; a closed socket ends the run.
type Manager struct {
	cfg      ManagerConfig
	api      *api.Client
	logger   *slog.Logger
	handlers Handlers

	authClient *http.Client

	details     *api.ChannelDetails
	channelName string
	client      Client
}

// NewManager creates a channel manager. apiClient is used once per run
// to fetch the channel credentials.
func NewManager(cfg ManagerConfig, apiClient *api.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	def := DefaultManagerConfig()
	if cfg.ClientName == "" {
		cfg.ClientName = def.ClientName
	}
	if cfg.AuthTimeout == 0 {
		cfg.AuthTimeout = def.AuthTimeout
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = def.BufferSize
	}

	m := &Manager{
		cfg:    cfg,
		api:    apiClient,
		logger: logger,
		authClient: &http.Client{
			Timeout: cfg.AuthTimeout,
		},
	}
	m.handlers = cfg.Handlers.fillDefaults(m)

	return m
}

// FetchChannelDetails fetches the channel and Pusher credentials from
// the API. Fetch or parse failures are fatal for the connect attempt;
// there is no retry.
func (m *Manager) FetchChannelDetails(ctx context.Context) error {
	details, err := m.api.GetCompany(ctx)
	if err != nil {
		return fmt.Errorf("fetch channel details: %w", err)
	}

	m.details = details
	m.logger.Info("channel details fetched",
		"id", details.ID,
		"name", details.Name,
		"channel_key", details.ChannelKey,
		"channel_key_expiry", details.ChannelKeyExpiry,
		"pusher_cluster", details.PusherCluster,
	)

	return nil
}

// Run connects the socket and processes frames until the context is
// cancelled or the transport fails. Credential-fetch and channel-auth
// failures are returned; per-message errors are logged and swallowed.
// The socket is released on every exit path.
func (m *Manager) Run(ctx context.Context) error {
	if m.details == nil {
		if err := m.FetchChannelDetails(ctx); err != nil {
			return err
		}
	}

	socketURL := m.cfg.SocketURL
	if socketURL == "" {
		socketURL = m.socketURL()
	}

	client := NewClient(ClientConfig{
		URL:              socketURL,
		HandshakeTimeout: m.cfg.HandshakeTimeout,
		WriteTimeout:     m.cfg.WriteTimeout,
		BufferSize:       m.cfg.BufferSize,
	}, m.logger)

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect websocket: %w", err)
	}
	m.client = client
	defer client.Close()

	// No subscribe yet: wait for pusher:connection_established.
	m.channelName = "private-" + m.details.ChannelKey
	m.logger.Info("websocket connection opened",
		"url", socketURL,
		"channel", m.channelName,
	)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("closing connection", "reason", ctx.Err())
			return nil
		case err := <-client.Errors():
			m.logger.Error("websocket closed", "error", err)
			return err
		case msg := <-client.Messages():
			if err := m.handleMessage(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// handleMessage decodes one inbound envelope and routes it. Only
// handshake failures (channel auth, subscribe send) return an error;
// everything else is logged so a malformed message never tears down the
// connection.
func (m *Manager) handleMessage(ctx context.Context, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		m.logger.Error("malformed envelope", "error", err)
		return nil
	}

	switch env.Event {
	case eventConnectionEstablished:
		return m.onConnectionEstablished(ctx, env.Data)
	case eventPing:
		// Unconditional pong, independent of handshake phase.
		if err := m.sendPong(); err != nil {
			m.logger.Error("send pong", "error", err)
		}
		return nil
	}

	data := decodeEventData(env.Data)
	m.logger.Debug("event received", "event", env.Event, "data", string(data))
	m.dispatch(env.Event, data)

	return nil
}

// onConnectionEstablished extracts the socket_id and performs the
// private-channel subscribe handshake. A missing socket_id skips the
// handshake without error.
func (m *Manager) onConnectionEstablished(ctx context.Context, data json.RawMessage) error {
	payload := decodeEventData(data)

	var info struct {
		SocketID string `json:"socket_id"`
	}
	if err := json.Unmarshal(payload, &info); err != nil || info.SocketID == "" {
		m.logger.Warn("connection established without socket_id", "data", string(data))
		return nil
	}

	return m.subscribe(ctx, info.SocketID)
}

// subscribe authenticates the channel and sends the pusher:subscribe
// control frame.
func (m *Manager) subscribe(ctx context.Context, socketID string) error {
	if m.channelName == "" {
		m.channelName = "private-" + m.details.ChannelKey
	}

	m.logger.Info("authenticating channel",
		"channel", m.channelName,
		"socket_id", socketID,
	)

	grant, err := m.authenticateChannel(ctx, socketID)
	if err != nil {
		return fmt.Errorf("authenticate channel %s: %w", m.channelName, err)
	}

	data, err := json.Marshal(subscribePayload{
		Channel:     m.channelName,
		Auth:        grant.Auth,
		ChannelData: grant.ChannelData,
	})
	if err != nil {
		return fmt.Errorf("marshal subscribe payload: %w", err)
	}

	frame, err := json.Marshal(Envelope{
		Event: eventSubscribe,
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("marshal subscribe frame: %w", err)
	}

	m.logger.Info("subscribing to channel", "channel", m.channelName)
	if err := m.client.Send(frame); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}

	return nil
}

// authenticateChannel obtains a per-socket authorization token from the
// backend broadcasting auth endpoint. A 403 from the primary route
// triggers exactly one retry against the /api-prefixed route; the first
// non-403 response is authoritative.
func (m *Manager) authenticateChannel(ctx context.Context, socketID string) (*AuthGrant, error) {
	body, err := json.Marshal(map[string]string{
		"socket_id":    socketID,
		"channel_name": m.channelName,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal auth payload: %w", err)
	}

	base := m.authBaseURL()
	authURLs := []string{
		base + "/broadcasting/auth",
		base + "/api/broadcasting/auth",
	}

	for i, authURL := range authURLs {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create auth request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Requested-With", "XMLHttpRequest")

		resp, err := m.authClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("auth request: %w", err)
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read auth response: %w", err)
		}

		if resp.StatusCode == http.StatusForbidden && i == 0 {
			m.logger.Warn("auth rejected, retrying fallback route", "url", authURL)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &api.APIError{
				StatusCode: resp.StatusCode,
				Message:    http.StatusText(resp.StatusCode),
				Body:       raw,
			}
		}

		var grant AuthGrant
		if err := json.Unmarshal(raw, &grant); err != nil {
			return nil, fmt.Errorf("decode auth grant: %w", err)
		}
		return &grant, nil
	}

	// Unreachable: the fallback attempt always returns above.
	return nil, fmt.Errorf("channel authentication failed")
}

// authBaseURL strips any trailing slash and /api suffix from the domain
// URL: the broadcasting auth route lives at the web root.
func (m *Manager) authBaseURL() string {
	base := strings.TrimRight(m.cfg.DomainURL, "/")
	base = strings.TrimSuffix(base, "/api")
	return base
}

// socketURL builds the Pusher connect URL from the channel details. The
// host derives from the cluster; ws.pusher.com when no cluster is set.
func (m *Manager) socketURL() string {
	host := "ws.pusher.com"
	if cluster := m.details.PusherCluster; cluster != "" {
		host = "ws-" + cluster + ".pusher.com"
	}

	return fmt.Sprintf(
		"wss://%s/app/%s?protocol=7&client=%s&version=1.0&flash=false",
		host, m.details.PusherKey, m.cfg.ClientName,
	)
}

// sendPong replies to a vendor keep-alive with an empty payload.
func (m *Manager) sendPong() error {
	if m.client == nil {
		return ErrNotConnected
	}

	frame, err := json.Marshal(Envelope{
		Event: eventPong,
		Data:  json.RawMessage(`{}`),
	})
	if err != nil {
		return fmt.Errorf("marshal pong frame: %w", err)
	}
	return m.client.Send(frame)
}

// decodeEventData unwraps Pusher's double-encoded data field: payloads
// may arrive as a JSON value or as a JSON string containing JSON.
func decodeEventData(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return data
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return data
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	// A plain string that isn't JSON; keep the original encoding.
	return data
}
