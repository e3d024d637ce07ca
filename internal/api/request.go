package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
)

// ErrInvalidParams is returned when query parameters are neither a
// mapping nor a raw query string. It is reported before any network I/O.
var ErrInvalidParams = errors.New("parameters must be a mapping or a query string")

// APIError represents a non-2xx response from the TOD Markets backend.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tod markets api error %d: %s", e.StatusCode, e.Message)
}

// Get fetches an endpoint and returns the response body as text. The
// caller decodes; no implicit JSON parsing happens here.
//
// params may be nil, a mapping (url.Values, map[string]string, or
// map[string]any where slice values repeat the key), or a raw query
// string with an optional leading "?". Anything else fails with
// ErrInvalidParams before a request is made.
func (c *Client) Get(ctx context.Context, endpoint string, params any) (string, error) {
	fullURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return "", err
	}
	return c.do(ctx, http.MethodGet, fullURL, nil)
}

// Post sends payload as a JSON body to an endpoint and returns the
// response body as text. A nil payload posts an empty object.
func (c *Client) Post(ctx context.Context, endpoint string, payload any) (string, error) {
	fullURL, err := c.buildURL(endpoint, nil)
	if err != nil {
		return "", err
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	return c.do(ctx, http.MethodPost, fullURL, body)
}

// buildURL joins endpoint against the base domain URL and appends query
// parameters. Joining follows standard URL-resolution rules: an absolute
// endpoint replaces the base entirely.
func (c *Client) buildURL(endpoint string, params any) (string, error) {
	qs, err := encodeParams(params)
	if err != nil {
		return "", err
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	fullURL := base.ResolveReference(ref).String()

	if qs == "" {
		return fullURL, nil
	}

	sep := "?"
	if strings.Contains(fullURL, "?") {
		sep = "&"
	}
	return fullURL + sep + qs, nil
}

// encodeParams turns the accepted parameter shapes into an encoded query
// string. Mapping values are percent-escaped; slice values repeat the
// key; a raw string is passed through with any leading "?" stripped.
func encodeParams(params any) (string, error) {
	switch p := params.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimLeft(p, "?"), nil
	case url.Values:
		return p.Encode(), nil
	case map[string]string:
		q := url.Values{}
		for k, v := range p {
			q.Set(k, v)
		}
		return q.Encode(), nil
	case map[string]any:
		q := url.Values{}
		for k, v := range p {
			rv := reflect.ValueOf(v)
			if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
				for i := 0; i < rv.Len(); i++ {
					q.Add(k, fmt.Sprint(rv.Index(i).Interface()))
				}
				continue
			}
			q.Add(k, fmt.Sprint(v))
		}
		return q.Encode(), nil
	default:
		return "", fmt.Errorf("%w, got %T", ErrInvalidParams, params)
	}
}

// do performs an HTTP request and returns the raw response body.
func (c *Client) do(ctx context.Context, method, fullURL string, body []byte) (string, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       respBody,
		}
	}

	c.logger.Debug("request completed",
		"method", method,
		"url", fullURL,
		"status", resp.StatusCode,
	)

	return string(respBody), nil
}
