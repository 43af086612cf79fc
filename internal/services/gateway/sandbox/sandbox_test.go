package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-booking/internal/status"
)

func TestCheckout_OpenCheckoutAutoCompletes(t *testing.T) {
	c := New(&Config{KeyID: "sbx_key", KeySecret: "test_secret"})
	ch := make(chan *status.Receipt, 1)
	c.SetReceiptChannel(ch)

	orderID, err := c.OpenCheckout(context.Background(), &status.CheckoutForm{AmountMinor: 440000})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(orderID, "sbx_order-"))

	select {
	case r := <-ch:
		assert.Equal(t, orderID, r.OrderID)
		assert.True(t, strings.HasPrefix(r.PaymentID, "sbx_pay-"))
		assert.True(t, c.VerifySignature(r))
	case <-time.After(time.Second):
		t.Fatal("no completion receipt arrived")
	}
}

func TestCheckout_NotifyDropsForgedReceipts(t *testing.T) {
	c := New(&Config{KeySecret: "test_secret"})
	ch := make(chan *status.Receipt, 1)
	c.SetReceiptChannel(ch)

	c.Notify(&status.Receipt{
		OrderID:   "sbx_order-1",
		PaymentID: "sbx_pay-1",
		Signature: "forged",
	})

	assert.Empty(t, ch)
}
