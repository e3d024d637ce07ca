package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/todmarkets/todmarkets-go/internal/api"
	"github.com/todmarkets/todmarkets-go/internal/config"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := api.NewClient(
		cfg.DomainURL,
		cfg.APIKey,
		api.WithTimeout(30*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Test 1: Company details
	fmt.Println("=== Testing GET /api/company ===")
	company, err := client.GetCompany(ctx)
	if err != nil {
		log.Fatalf("GetCompany failed: %v", err)
	}
	fmt.Printf("Company: %s (id %d)\n", company.Name, company.ID)
	fmt.Printf("Channel key: %s (expires %s)\n", company.ChannelKey, company.ChannelKeyExpiry)
	fmt.Printf("Pusher: key=%s cluster=%s\n", company.PusherKey, company.PusherCluster)

	// Test 2: Asset prices with repeated query keys
	fmt.Println("\n=== Testing GET /api/assets/prices ===")
	prices, err := client.GetAssetPrices(ctx, map[string]any{
		"markets": "N Q",
		"periods": "Q326",
		"bucket":  "EP MD",
	})
	if err != nil {
		log.Fatalf("GetAssetPrices failed: %v", err)
	}
	fmt.Println(prices)

	// Test 3: Place an order
	fmt.Println("\n=== Testing POST /api/order ===")
	resp, err := client.CreateOrder(ctx, api.OrderRequest{
		AssetCode:    "Q-Q127C6X",
		Type:         "BUY",
		Price:        10.66,
		Quantity:     10,
		ReplaceMatch: 1,
		IsPersistent: 0,
		Status:       "HOLD",
	})
	if err != nil {
		log.Fatalf("CreateOrder failed: %v", err)
	}
	fmt.Println(resp)
}
