// Package realtime implements the private-channel manager.
//
// The manager:
//   - Fetches channel credentials from GET /api/company
//   - Opens a single Pusher-protocol WebSocket connection
//   - Waits for pusher:connection_established, then authenticates the
//     private channel via the backend broadcasting auth endpoint
//   - Sends pusher:subscribe and dispatches application events to handlers
//
// There is one connection per manager and no reconnect: a closed socket
// ends the run.
package realtime
