package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-booking/internal/status"
)

func testCheckout(t *testing.T, baseURL, scriptURL string) *Checkout {
	t.Helper()
	c, err := New(context.Background(), &Config{
		BaseURL:   baseURL,
		ScriptURL: scriptURL,
		KeyID:     "rzp_test_key",
		KeySecret: "test_secret",
	})
	require.NoError(t, err)
	return c
}

func TestCheckout_LoadScript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("!function(){}();"))
	}))
	defer srv.Close()

	c := testCheckout(t, srv.URL, srv.URL+"/v1/checkout.js")
	assert.NoError(t, c.LoadScript(context.Background()))
}

func TestCheckout_LoadScript_EmptyBodyFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testCheckout(t, srv.URL, srv.URL+"/v1/checkout.js")
	assert.Error(t, c.LoadScript(context.Background()))
}

func TestCheckout_LoadScript_NonOKFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := testCheckout(t, srv.URL, srv.URL+"/v1/checkout.js")
	assert.Error(t, c.LoadScript(context.Background()))
}

func TestCheckout_OpenCheckout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "test_secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(440000), body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, "ATT-1", body["receipt"])

		json.NewEncoder(w).Encode(map[string]any{"id": "order_1", "status": "created"})
	}))
	defer srv.Close()

	c := testCheckout(t, srv.URL, srv.URL+"/v1/checkout.js")

	orderID, err := c.OpenCheckout(context.Background(), &status.CheckoutForm{
		AmountMinor: 440000,
		Currency:    "INR",
		Reference:   "ATT-1",
		Notes:       map[string]string{"flight": "AI101"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_1", orderID)
}

func TestCheckout_OpenCheckout_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"description": "amount must be at least 100"},
		})
	}))
	defer srv.Close()

	c := testCheckout(t, srv.URL, srv.URL+"/v1/checkout.js")

	_, err := c.OpenCheckout(context.Background(), &status.CheckoutForm{AmountMinor: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestCheckout_NotifyDropsUnverifiedReceipts(t *testing.T) {
	c := testCheckout(t, "http://unused", "http://unused")

	ch := make(chan *status.Receipt, 1)
	c.SetReceiptChannel(ch)

	c.Notify(&status.Receipt{OrderID: "order_1", PaymentID: "pay_1", Signature: "forged"})
	assert.Empty(t, ch)

	sig := Hmac256([]byte("order_1|pay_1"), []byte("test_secret"))
	c.Notify(&status.Receipt{OrderID: "order_1", PaymentID: "pay_1", Signature: sig})

	require.Len(t, ch, 1)
	r := <-ch
	assert.Equal(t, "pay_1", r.PaymentID)
}
