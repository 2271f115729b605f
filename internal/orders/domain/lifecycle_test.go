package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/money"
)

var testAddress = Address{
	Name:    "Lakshmi Iyer",
	Phone:   "9876543210",
	Line1:   "12 Temple Street",
	City:    "Madurai",
	State:   "Tamil Nadu",
	Pincode: "625001",
}

func newTestOrder(t *testing.T, method PaymentMethod) *Order {
	t.Helper()
	cart := cartOf(t, CartLine{ProductID: "A", Name: "Brass diya", UnitPrice: money.FromRupees(100), Quantity: 2})
	o, err := NewOrder("user-1", cart, testAddress, method, nil, time.Now())
	require.NoError(t, err)
	return o
}

func TestNewOrder_FreezesTotals(t *testing.T) {
	cart := cartOf(t, CartLine{ProductID: "A", UnitPrice: money.FromRupees(100), Quantity: 2})
	o, err := NewOrder("user-1", cart, testAddress, PaymentMethodUPI, coupon(t, "percent", "10"), time.Now())
	require.NoError(t, err)

	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, money.FromRupees(200), o.Subtotal)
	assert.Equal(t, money.FromRupees(20), o.Discount)
	assert.Equal(t, money.FromRupees(180), o.TotalAmount)
	require.NotNil(t, o.Coupon)
	assert.Equal(t, "TEST10", o.Coupon.Code)

	require.NoError(t, cart.Add(CartLine{ProductID: "B", UnitPrice: money.FromRupees(5), Quantity: 1}))
	assert.Len(t, o.Lines, 1)
}

func TestNewOrder_Validation(t *testing.T) {
	cart := cartOf(t, CartLine{ProductID: "A", UnitPrice: money.FromRupees(100), Quantity: 1})

	_, err := NewOrder("user-1", &Cart{}, testAddress, PaymentMethodCOD, nil, time.Now())
	assert.Equal(t, ErrCartEmpty, err)

	_, err = NewOrder("user-1", cart, testAddress, PaymentMethod("CARD"), nil, time.Now())
	assert.Equal(t, ErrPaymentMethodInvalid, err)

	bad := testAddress
	bad.Pincode = "12345"
	_, err = NewOrder("user-1", cart, bad, PaymentMethodCOD, nil, time.Now())
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		from   OrderStatus
		to     OrderStatus
		reason string
	}{
		{OrderStatusPending, OrderStatusShipped, ""},
		{OrderStatusPending, OrderStatusCancelled, ""},
		{OrderStatusShipped, OrderStatusDelivered, ""},
		{OrderStatusPending, OrderStatusDelivered, ReasonInvalidMove},
		{OrderStatusShipped, OrderStatusCancelled, ReasonInvalidMove},
		{OrderStatusShipped, OrderStatusPending, ReasonInvalidMove},
		{OrderStatusDelivered, OrderStatusShipped, ReasonTerminalState},
		{OrderStatusDelivered, OrderStatusDelivered, ReasonTerminalState},
		{OrderStatusCancelled, OrderStatusShipped, ReasonTerminalState},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := newTestOrder(t, PaymentMethodCOD)
			o.Status = tt.from

			err := o.CheckTransition(tt.to)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, errors.CodeIllegalTransition))
			assert.Equal(t, tt.reason, errors.ReasonOf(err))
		})
	}
}

func TestCheckCancel(t *testing.T) {
	for _, st := range []OrderStatus{OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		o := newTestOrder(t, PaymentMethodCOD)
		o.Status = st
		err := o.CheckCancel()
		assert.True(t, errors.HasReason(err, ReasonNotCancellable), "status %s", st)
	}

	assert.NoError(t, newTestOrder(t, PaymentMethodCOD).CheckCancel())
}

func TestCheckSubmitUTR(t *testing.T) {
	o := newTestOrder(t, PaymentMethodUPI)
	assert.NoError(t, o.CheckSubmitUTR("UTR12345678"))

	o.PaymentStatus = PaymentStatusUnderReview
	assert.NoError(t, o.CheckSubmitUTR("UTR87654321"), "re-submission is allowed")

	assert.Equal(t, ErrUTRInvalid, o.CheckSubmitUTR("abc"))
	assert.Equal(t, ErrUTRInvalid, o.CheckSubmitUTR("UTR-1234-5678"))

	o.PaymentStatus = PaymentStatusPaid
	assert.True(t, errors.HasReason(o.CheckSubmitUTR("UTR12345678"), ReasonAlreadyPaid))

	cod := newTestOrder(t, PaymentMethodCOD)
	assert.True(t, errors.HasReason(cod.CheckSubmitUTR("UTR12345678"), ReasonNotUPI))

	cancelled := newTestOrder(t, PaymentMethodUPI)
	cancelled.Status = OrderStatusCancelled
	assert.True(t, errors.HasReason(cancelled.CheckSubmitUTR("UTR12345678"), ReasonOrderCancelled))
}

func TestCheckMarkPaid(t *testing.T) {
	o := newTestOrder(t, PaymentMethodUPI)
	assert.NoError(t, o.CheckMarkPaid())

	o.PaymentStatus = PaymentStatusUnderReview
	assert.NoError(t, o.CheckMarkPaid())

	o.PaymentStatus = PaymentStatusPaid
	err := o.CheckMarkPaid()
	assert.True(t, errors.Is(err, errors.CodeIllegalTransition))
	assert.Equal(t, ReasonAlreadyPaid, errors.ReasonOf(err))
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, st)

	_, err = ParseOrderStatus("returned")
	assert.Equal(t, ErrStatusInvalid, err)
}
