package events

import (
	"time"

	"pooja-supplies/pkg/money"
)

// Exchange names
const (
	ExchangeOrders = "orders.events"
)

// Routing keys, also used as event types
const (
	RoutingKeyOrderPlaced  = "order.placed"
	RoutingKeyOrderUpdated = "order.updated"
)

// Transitions carried by order.updated events
const (
	TransitionShipped      = "shipped"
	TransitionDelivered    = "delivered"
	TransitionCancelled    = "cancelled"
	TransitionUTRSubmitted = "utr_submitted"
	TransitionPaid         = "paid"
)

// OrderEvent is published on the orders exchange and Kafka topic
type OrderEvent struct {
	Version   string       `json:"version"`
	EventType string       `json:"event_type"`
	Timestamp time.Time    `json:"timestamp"`
	TraceID   string       `json:"trace_id"`
	Payload   OrderPayload `json:"payload"`
}

// OrderPayload contains order data
type OrderPayload struct {
	OrderID       string      `json:"order_id"`
	UserID        string      `json:"user_id"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	PaymentMethod string      `json:"payment_method"`
	TotalAmount   money.Money `json:"total_amount"`
	Transition    string      `json:"transition,omitempty"`
	PlacedAt      time.Time   `json:"placed_at"`
}

// NewOrderPlacedEvent creates an order.placed event
func NewOrderPlacedEvent(payload OrderPayload, traceID string) *OrderEvent {
	return newOrderEvent(RoutingKeyOrderPlaced, payload, traceID)
}

// NewOrderUpdatedEvent creates an order.updated event for a lifecycle transition
func NewOrderUpdatedEvent(transition string, payload OrderPayload, traceID string) *OrderEvent {
	payload.Transition = transition
	return newOrderEvent(RoutingKeyOrderUpdated, payload, traceID)
}

func newOrderEvent(eventType string, payload OrderPayload, traceID string) *OrderEvent {
	return &OrderEvent{
		Version:   "1.0",
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
		Payload:   payload,
	}
}
