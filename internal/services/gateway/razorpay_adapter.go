package gateway

import (
	"context"
	"fmt"

	"flight-booking/internal/services/gateway/razorpay"
	"flight-booking/internal/status"
)

// RazorpayAdapter wraps the razorpay checkout client to conform to CheckoutGateway
type RazorpayAdapter struct {
	client *razorpay.Checkout
}

// NewRazorpayAdapter creates a new razorpay adapter
func NewRazorpayAdapter(ctx context.Context, config *razorpay.Config) (*RazorpayAdapter, error) {
	client, err := razorpay.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay client: %w", err)
	}

	return &RazorpayAdapter{
		client: client,
	}, nil
}

// GetProvider returns the gateway provider type
func (a *RazorpayAdapter) GetProvider() Provider {
	return ProviderRazorpay
}

// LoadScript fetches the hosted checkout loader for one attempt
func (a *RazorpayAdapter) LoadScript(ctx context.Context) error {
	if err := a.client.LoadScript(ctx); err != nil {
		return fmt.Errorf("%w: %v", status.ErrScriptLoadFailed, err)
	}
	return nil
}

// OpenCheckout creates the gateway order backing a widget
func (a *RazorpayAdapter) OpenCheckout(ctx context.Context, form *status.CheckoutForm) (*OpenInfo, error) {
	orderID, err := a.client.OpenCheckout(ctx, form)
	if err != nil {
		return nil, err
	}

	return &OpenInfo{
		OrderID: orderID,
		KeyID:   a.client.KeyID,
	}, nil
}

// VerifyReceipt checks the completion handler's signature
func (a *RazorpayAdapter) VerifyReceipt(r *status.Receipt) bool {
	return a.client.VerifySignature(r)
}

// SetReceiptChannel sets the channel receiving authorization receipts
func (a *RazorpayAdapter) SetReceiptChannel(ch chan *status.Receipt) {
	a.client.SetReceiptChannel(ch)
}

// Notify feeds a webhook completion into the receipt channel
func (a *RazorpayAdapter) Notify(r *status.Receipt) {
	a.client.Notify(r)
}

// Close gracefully closes any connections
func (a *RazorpayAdapter) Close(ctx context.Context) error {
	return a.client.Close(ctx)
}
