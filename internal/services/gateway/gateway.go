package gateway

import (
	"context"

	"flight-booking/internal/status"
)

// Provider represents different checkout gateway types
type Provider string

const (
	ProviderRazorpay Provider = "razorpay"
	ProviderSandbox  Provider = "sandbox"
)

// OpenInfo is returned after a hosted checkout is opened: the gateway
// order backing the widget and the public key the widget embeds.
type OpenInfo struct {
	OrderID string `json:"order_id"`
	KeyID   string `json:"key_id"`
}

// CheckoutGateway is the injected payment-authorization capability. One
// instance serves all attempts; each attempt loads the hosted script
// fresh, opens one widget and resolves at most once through the receipt
// channel.
type CheckoutGateway interface {
	// GetProvider returns the gateway provider type
	GetProvider() Provider

	// LoadScript fetches the hosted checkout loader for this attempt.
	// An error means the attempt fails with ErrScriptLoadFailed; the
	// script is never cached across attempts.
	LoadScript(ctx context.Context) error

	// OpenCheckout creates the gateway order backing a widget
	OpenCheckout(ctx context.Context, form *status.CheckoutForm) (*OpenInfo, error)

	// VerifyReceipt checks the completion handler's signature
	VerifyReceipt(r *status.Receipt) bool

	// SetReceiptChannel sets the channel receiving authorization receipts
	SetReceiptChannel(ch chan *status.Receipt)

	// Notify feeds one completion into the receipt channel, for the
	// confirmation webhook path
	Notify(r *status.Receipt)

	// Close gracefully closes any connections
	Close(ctx context.Context) error
}

// GatewayFactory creates gateway instances based on provider type
type GatewayFactory interface {
	CreateGateway(ctx context.Context, provider Provider, config interface{}) (CheckoutGateway, error)
	GetSupportedProviders() []Provider
}
