package domain

import (
	"fmt"

	"pooja-supplies/pkg/events"
)

// Message is one push notification for one device
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Ticket is the delivery receipt of one message
type Ticket struct {
	Token string
	OK    bool
	// DeviceNotRegistered means the token is dead and should be dropped
	DeviceNotRegistered bool
	Error               string
}

// shortID is the order number shown to people
func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

// Notice is the text of a notification and who receives it
type Notice struct {
	Title string
	Body  string
	// ToAdmins sends the notice to every admin device instead of the buyer
	ToAdmins bool
}

// OrderPlacedNotice is sent to admins for a new order
func OrderPlacedNotice(p events.OrderPayload) Notice {
	return Notice{
		Title:    "New order received",
		Body:     fmt.Sprintf("Order #%s for ₹%s (%s)", shortID(p.OrderID), p.TotalAmount, p.PaymentMethod),
		ToAdmins: true,
	}
}

// OrderUpdatedNotice describes a lifecycle transition. ok is false for
// transitions nobody is told about.
func OrderUpdatedNotice(p events.OrderPayload) (n Notice, ok bool) {
	id := shortID(p.OrderID)
	switch p.Transition {
	case events.TransitionShipped:
		return Notice{Title: "Order shipped", Body: fmt.Sprintf("Your order #%s is on its way.", id)}, true
	case events.TransitionDelivered:
		return Notice{Title: "Order delivered", Body: fmt.Sprintf("Your order #%s has been delivered.", id)}, true
	case events.TransitionCancelled:
		return Notice{Title: "Order cancelled", Body: fmt.Sprintf("Your order #%s was cancelled.", id)}, true
	case events.TransitionPaid:
		return Notice{Title: "Payment received", Body: fmt.Sprintf("We received ₹%s for order #%s.", p.TotalAmount, id)}, true
	case events.TransitionUTRSubmitted:
		return Notice{
			Title:    "Payment to verify",
			Body:     fmt.Sprintf("Order #%s has a UPI reference waiting for review.", id),
			ToAdmins: true,
		}, true
	default:
		return Notice{}, false
	}
}

// Fanout builds one message per token
func (n Notice) Fanout(tokens []*PushToken, data map[string]string) []Message {
	messages := make([]Message, 0, len(tokens))
	for _, t := range tokens {
		messages = append(messages, Message{
			To:    t.Token,
			Title: n.Title,
			Body:  n.Body,
			Sound: "default",
			Data:  data,
		})
	}
	return messages
}
