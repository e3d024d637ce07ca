package api

// CompanyResponse from GET /api/company
type CompanyResponse struct {
	Data ChannelDetails `json:"data"`
}

// ChannelDetails carries the private-channel and Pusher credentials for
// the account's company, populated once from GET /api/company.
type ChannelDetails struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	ChannelKey       string `json:"channel_key"`
	ChannelKeyExpiry string `json:"channel_key_expiry"`
	PusherHost       string `json:"pusher_host"`
	PusherKey        string `json:"pusher_key"`
	PusherCluster    string `json:"pusher_cluster"`
}

// OrderRequest is the payload for POST /api/order. The backend interprets
// the fields; this client passes them through untouched.
type OrderRequest struct {
	AssetCode    string  `json:"asset_code"`
	Type         string  `json:"type"` // "BUY" or "SELL"
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ReplaceMatch int     `json:"replace_match"`
	IsPersistent int     `json:"is_persistent"`
	Status       string  `json:"status"` // e.g. "HOLD"
}
