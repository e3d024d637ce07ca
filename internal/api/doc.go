// Package api provides the TOD Markets REST client.
//
// All calls are authenticated with a bearer token and return the raw
// response body as text; callers decode. Non-2xx responses surface as
// *APIError with no retry.
//
// Key endpoints:
//   - GET /api/company (channel + Pusher credentials)
//   - GET /api/assets/prices
//   - POST /api/order
package api
