package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pooja-supplies/pkg/events"
	"pooja-supplies/pkg/money"
)

func TestNewPushToken(t *testing.T) {
	now := time.Now()

	tok, err := NewPushToken("u1", " ExponentPushToken[xyz-123] ", false, now)
	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[xyz-123]", tok.Token)

	_, err = NewPushToken("u1", "ExpoPushToken[a]", true, now)
	assert.NoError(t, err)

	for _, bad := range []string{"", "ExponentPushToken[]", "fcm:abcdef", "ExponentPushToken[abc"} {
		_, err := NewPushToken("u1", bad, false, now)
		assert.ErrorIs(t, err, ErrTokenInvalid, bad)
	}

	_, err = NewPushToken("", "ExpoPushToken[a]", false, now)
	assert.ErrorIs(t, err, ErrUserIDRequired)
}

func TestNotices(t *testing.T) {
	p := events.OrderPayload{
		OrderID:       "3f2a9c1e-0000-4000-8000-000000000000",
		TotalAmount:   money.FromPaise(104950),
		PaymentMethod: "UPI",
	}

	placed := OrderPlacedNotice(p)
	assert.Equal(t, "New order received", placed.Title)
	assert.Equal(t, "Order #3f2a9c1e for ₹1049.50 (UPI)", placed.Body)
	assert.True(t, placed.ToAdmins)

	p.Transition = events.TransitionShipped
	shipped, ok := OrderUpdatedNotice(p)
	assert.True(t, ok)
	assert.False(t, shipped.ToAdmins)
	assert.Contains(t, shipped.Body, "#3f2a9c1e")

	p.Transition = events.TransitionUTRSubmitted
	review, ok := OrderUpdatedNotice(p)
	assert.True(t, ok)
	assert.True(t, review.ToAdmins)

	p.Transition = "refunded"
	_, ok = OrderUpdatedNotice(p)
	assert.False(t, ok)
}

func TestFanout(t *testing.T) {
	tokens := []*PushToken{{Token: "ExpoPushToken[a]"}, {Token: "ExpoPushToken[b]"}}
	msgs := Notice{Title: "t", Body: "b"}.Fanout(tokens, map[string]string{"order_id": "o1"})
	require.Len(t, msgs, 2)
	assert.Equal(t, "ExpoPushToken[b]", msgs[1].To)
	assert.Equal(t, "o1", msgs[0].Data["order_id"])
}
