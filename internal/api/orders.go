package api

import (
	"context"
	"fmt"
)

// CreateOrder places an order via POST /api/order and returns the raw
// response body.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (string, error) {
	body, err := c.Post(ctx, "/api/order", order)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	return body, nil
}
