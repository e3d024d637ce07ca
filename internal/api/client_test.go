package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://app.todmarkets.test", "test-key")

		if c.baseURL != "https://app.todmarkets.test" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://app.todmarkets.test")
		}
		if c.apiKey != "test-key" {
			t.Errorf("apiKey = %q, want %q", c.apiKey, "test-key")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient("https://app.todmarkets.test", "", WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("https://app.todmarkets.test", "", WithLogger(logger))
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		c := NewClient("https://app.todmarkets.test", "", WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
	})
}

func TestGet(t *testing.T) {
	t.Run("returns raw body and sends auth headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("method = %q, want GET", r.Method)
			}
			if r.URL.Path != "/api/company" {
				t.Errorf("path = %q, want /api/company", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Authorization = %q, want %q", got, "Bearer test-key")
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got)
			}
			io.WriteString(w, `{"data":{"id":1}}`)
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		body, err := c.Get(context.Background(), "/api/company", nil)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if body != `{"data":{"id":1}}` {
			t.Errorf("body = %q, want raw response text", body)
		}
	})

	t.Run("map params with list values repeat the key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query()["markets"]
			if len(got) != 2 || got[0] != "N" || got[1] != "Q" {
				t.Errorf("markets = %v, want [N Q]", got)
			}
			if bucket := r.URL.Query().Get("bucket"); bucket != "EP MD" {
				t.Errorf("bucket = %q, want %q", bucket, "EP MD")
			}
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		_, err := c.Get(context.Background(), "/api/assets/prices", map[string]any{
			"markets": []string{"N", "Q"},
			"bucket":  "EP MD",
		})
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	})

	t.Run("raw query string params", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "limit=10" {
				t.Errorf("RawQuery = %q, want %q", r.URL.RawQuery, "limit=10")
			}
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		if _, err := c.Get(context.Background(), "/api/company", "?limit=10"); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	})

	t.Run("non-2xx returns APIError without body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"not found"}`)
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		body, err := c.Get(context.Background(), "/missing", nil)
		if body != "" {
			t.Errorf("body = %q, want empty on error", body)
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusNotFound)
		}
		if string(apiErr.Body) != `{"error":"not found"}` {
			t.Errorf("Body = %q, want error payload", apiErr.Body)
		}
	})

	t.Run("invalid params fail before any request", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		_, err := c.Get(context.Background(), "/api/company", 42)
		if !errors.Is(err, ErrInvalidParams) {
			t.Errorf("error = %v, want ErrInvalidParams", err)
		}
		if n := requests.Load(); n != 0 {
			t.Errorf("server saw %d requests, want 0", n)
		}
	})
}

func TestPost(t *testing.T) {
	t.Run("serializes payload", func(t *testing.T) {
		var received []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %q, want POST", r.Method)
			}
			received, _ = io.ReadAll(r.Body)
			io.WriteString(w, `{"ok":true}`)
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		body, err := c.Post(context.Background(), "/api/order", map[string]any{"type": "BUY"})
		if err != nil {
			t.Fatalf("Post failed: %v", err)
		}
		if body != `{"ok":true}` {
			t.Errorf("body = %q, want raw response text", body)
		}
		if string(received) != `{"type":"BUY"}` {
			t.Errorf("request body = %q, want %q", received, `{"type":"BUY"}`)
		}
	})

	t.Run("nil payload posts empty object", func(t *testing.T) {
		var received []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received, _ = io.ReadAll(r.Body)
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		if _, err := c.Post(context.Background(), "/api/order", nil); err != nil {
			t.Fatalf("Post failed: %v", err)
		}
		if string(received) != `{}` {
			t.Errorf("request body = %q, want %q", received, `{}`)
		}
	})

	t.Run("non-2xx returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		c := NewClient(server.URL, "test-key")
		_, err := c.Post(context.Background(), "/api/order", nil)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusUnprocessableEntity)
		}
	})
}

func TestGetCompany(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/company" {
			t.Errorf("path = %q, want /api/company", r.URL.Path)
		}
		io.WriteString(w, `{"data":{
			"id": 7,
			"name": "Acme Trading",
			"channel_key": "abc123",
			"channel_key_expiry": "2026-09-01T00:00:00Z",
			"pusher_host": "ws-eu.pusher.com",
			"pusher_key": "app-key-1",
			"pusher_cluster": "eu"
		}}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key")
	details, err := c.GetCompany(context.Background())
	if err != nil {
		t.Fatalf("GetCompany failed: %v", err)
	}

	if details.ID != 7 {
		t.Errorf("ID = %d, want 7", details.ID)
	}
	if details.ChannelKey != "abc123" {
		t.Errorf("ChannelKey = %q, want abc123", details.ChannelKey)
	}
	if details.PusherKey != "app-key-1" {
		t.Errorf("PusherKey = %q, want app-key-1", details.PusherKey)
	}
	if details.PusherCluster != "eu" {
		t.Errorf("PusherCluster = %q, want eu", details.PusherCluster)
	}
}

func TestGetCompanyMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key")
	if _, err := c.GetCompany(context.Background()); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestCreateOrder(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/order" {
			t.Errorf("path = %q, want /api/order", r.URL.Path)
		}
		received, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"status":"HOLD"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key")
	body, err := c.CreateOrder(context.Background(), OrderRequest{
		AssetCode:    "Q-Q127C6X",
		Type:         "BUY",
		Price:        10.66,
		Quantity:     10,
		ReplaceMatch: 1,
		IsPersistent: 0,
		Status:       "HOLD",
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if body != `{"status":"HOLD"}` {
		t.Errorf("body = %q, want raw response text", body)
	}

	want := `{"asset_code":"Q-Q127C6X","type":"BUY","price":10.66,"quantity":10,"replace_match":1,"is_persistent":0,"status":"HOLD"}`
	if string(received) != want {
		t.Errorf("request body = %q, want %q", received, want)
	}
}
