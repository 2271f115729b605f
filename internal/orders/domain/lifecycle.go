package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// UTRPattern is the accepted shape of a UPI transaction reference
var UTRPattern = regexp.MustCompile(`^[A-Za-z0-9]{8,30}$`)

// forward lists the status moves AdvanceStatus may make
var forward = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// CheckTransition reports whether the order may move to status to
func (o *Order) CheckTransition(to OrderStatus) error {
	if o.Status.IsTerminal() {
		return illegal(ReasonTerminalState, fmt.Sprintf("order is already %s", o.Status), o)
	}
	for _, allowed := range forward[o.Status] {
		if allowed == to {
			return nil
		}
	}
	return illegal(ReasonInvalidMove, fmt.Sprintf("cannot move order from %s to %s", o.Status, to), o)
}

// CheckCancel reports whether the order may be cancelled
func (o *Order) CheckCancel() error {
	if o.Status != OrderStatusPending {
		return illegal(ReasonNotCancellable, fmt.Sprintf("a %s order cannot be cancelled", strings.ToLower(string(o.Status))), o)
	}
	return nil
}

// CheckSubmitUTR reports whether a UTR may be recorded against the order
func (o *Order) CheckSubmitUTR(utr string) error {
	if !UTRPattern.MatchString(utr) {
		return ErrUTRInvalid
	}
	if o.PaymentMethod != PaymentMethodUPI {
		return illegal(ReasonNotUPI, "only UPI orders take a transaction reference", o)
	}
	if o.Status == OrderStatusCancelled {
		return illegal(ReasonOrderCancelled, "order is cancelled", o)
	}
	if o.PaymentStatus == PaymentStatusPaid {
		return illegal(ReasonAlreadyPaid, "order is already paid", o)
	}
	return nil
}

// CheckMarkPaid reports whether the order may be marked paid
func (o *Order) CheckMarkPaid() error {
	if o.PaymentStatus == PaymentStatusPaid {
		return illegal(ReasonAlreadyPaid, "order is already paid", o)
	}
	if o.Status == OrderStatusCancelled {
		return illegal(ReasonOrderCancelled, "order is cancelled", o)
	}
	return nil
}

// NormalizeUTR trims and upper-cases a transaction reference
func NormalizeUTR(utr string) string {
	return strings.ToUpper(strings.TrimSpace(utr))
}
