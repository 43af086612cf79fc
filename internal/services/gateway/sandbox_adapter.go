package gateway

import (
	"context"

	"flight-booking/internal/services/gateway/sandbox"
	"flight-booking/internal/status"
)

// SandboxAdapter wraps the in-process sandbox checkout to conform to CheckoutGateway
type SandboxAdapter struct {
	client *sandbox.Checkout
}

// NewSandboxAdapter creates a new sandbox adapter
func NewSandboxAdapter(config *sandbox.Config) *SandboxAdapter {
	return &SandboxAdapter{
		client: sandbox.New(config),
	}
}

// GetProvider returns the gateway provider type
func (a *SandboxAdapter) GetProvider() Provider {
	return ProviderSandbox
}

// LoadScript is a no-op for the sandbox
func (a *SandboxAdapter) LoadScript(ctx context.Context) error {
	return a.client.LoadScript(ctx)
}

// OpenCheckout mints a local order backing a widget
func (a *SandboxAdapter) OpenCheckout(ctx context.Context, form *status.CheckoutForm) (*OpenInfo, error) {
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
func (a *SandboxAdapter) VerifyReceipt(r *status.Receipt) bool {
	return a.client.VerifySignature(r)
}

// SetReceiptChannel sets the channel receiving authorization receipts
func (a *SandboxAdapter) SetReceiptChannel(ch chan *status.Receipt) {
	a.client.SetReceiptChannel(ch)
}

// Notify feeds a webhook completion into the receipt channel
func (a *SandboxAdapter) Notify(r *status.Receipt) {
	a.client.Notify(r)
}

// Close gracefully closes any connections
func (a *SandboxAdapter) Close(ctx context.Context) error {
	return a.client.Close(ctx)
}
