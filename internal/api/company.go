package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetCompany fetches the company record, including the private-channel
// and Pusher credentials used by the realtime manager.
func (c *Client) GetCompany(ctx context.Context) (*ChannelDetails, error) {
	body, err := c.Get(ctx, "/api/company", nil)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	var resp CompanyResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal company response: %w", err)
	}

	return &resp.Data, nil
}

// GetAssetPrices fetches asset price data. params follows the Get
// parameter shapes (mapping or raw query string).
func (c *Client) GetAssetPrices(ctx context.Context, params any) (string, error) {
	body, err := c.Get(ctx, "/api/assets/prices", params)
	if err != nil {
		return "", fmt.Errorf("get asset prices: %w", err)
	}
	return body, nil
}
