package realtime

import "encoding/json"

// Vendor control events (Pusher protocol v7).
const (
	eventConnectionEstablished = "pusher:connection_established"
	eventPing                  = "pusher:ping"
	eventPong                  = "pusher:pong"
	eventSubscribe             = "pusher:subscribe"
)

// Application event names as broadcast by the backend. Matching is by
// exact fully-qualified string.
const (
	EventPriceChange  = `App\Events\AssetPriceChangeEventCompany`
	EventOrderUpdated = `App\Events\OrderUpdated`
	EventOrderFilled  = `App\Events\OrderFilled`
	EventOrderCreated = `App\Events\OrderCreated`
)

// Handler receives a decoded event payload.
type Handler func(data json.RawMessage)

// Handlers routes application events to callbacks. Entries left nil are
// replaced with log-only handlers by the manager.
type Handlers struct {
	PriceChange  Handler
	OrderUpdated Handler
	OrderFilled  Handler
	OrderCreated Handler
}

// dispatch routes a decoded application event to its handler. Unknown
// event types are logged and dropped.
func (m *Manager) dispatch(event string, data json.RawMessage) {
	switch event {
	case EventPriceChange:
		m.handlers.PriceChange(data)
	case EventOrderUpdated:
		m.handlers.OrderUpdated(data)
	case EventOrderFilled:
		m.handlers.OrderFilled(data)
	case EventOrderCreated:
		m.handlers.OrderCreated(data)
	default:
		m.logger.Info("unhandled event type", "event", event)
	}
}

// fillDefaults replaces nil handler entries with log-only stubs.
func (h Handlers) fillDefaults(m *Manager) Handlers {
	if h.PriceChange == nil {
		h.PriceChange = m.logHandler("price change")
	}
	if h.OrderUpdated == nil {
		h.OrderUpdated = m.logHandler("order updated")
	}
	if h.OrderFilled == nil {
		h.OrderFilled = m.logHandler("order filled")
	}
	if h.OrderCreated == nil {
		h.OrderCreated = m.logHandler("order created")
	}
	return h
}

func (m *Manager) logHandler(name string) Handler {
	return func(data json.RawMessage) {
		m.logger.Info(name, "data", string(data))
	}
}
