package gateway

import (
	"context"
	"fmt"

	"flight-booking/internal/services/gateway/razorpay"
	"flight-booking/internal/services/gateway/sandbox"
)

// Factory implements GatewayFactory interface
type Factory struct{}

// NewFactory creates a new gateway factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateGateway creates a gateway instance based on provider type and configuration
func (f *Factory) CreateGateway(ctx context.Context, provider Provider, config interface{}) (CheckoutGateway, error) {
	switch provider {
	case ProviderRazorpay:
		rzpConfig, ok := config.(*razorpay.Config)
		if !ok {
			return nil, fmt.Errorf("invalid razorpay config type, expected *razorpay.Config")
		}
		return NewRazorpayAdapter(ctx, rzpConfig)

	case ProviderSandbox:
		sbxConfig, ok := config.(*sandbox.Config)
		if !ok {
			return nil, fmt.Errorf("invalid sandbox config type, expected *sandbox.Config")
		}
		return NewSandboxAdapter(sbxConfig), nil

	default:
		return nil, fmt.Errorf("unsupported gateway provider: %s", provider)
	}
}

// GetSupportedProviders returns list of supported gateway providers
func (f *Factory) GetSupportedProviders() []Provider {
	return []Provider{
		ProviderRazorpay,
		ProviderSandbox,
	}
}

// Registry manages gateway instances, with the first registered as primary
type Registry struct {
	gateways map[Provider]CheckoutGateway
	factory  GatewayFactory
	primary  Provider
}

// NewRegistry creates a new gateway registry
func NewRegistry(factory GatewayFactory) *Registry {
	return &Registry{
		gateways: make(map[Provider]CheckoutGateway),
		factory:  factory,
	}
}

// Register creates and registers a gateway instance
func (r *Registry) Register(ctx context.Context, provider Provider, config interface{}) error {
	gw, err := r.factory.CreateGateway(ctx, provider, config)
	if err != nil {
		return fmt.Errorf("failed to create %s gateway: %w", provider, err)
	}

	r.gateways[provider] = gw

	if r.primary == "" {
		r.primary = provider
	}

	return nil
}

// Get returns a gateway instance by provider
func (r *Registry) Get(provider Provider) (CheckoutGateway, error) {
	gw, exists := r.gateways[provider]
	if !exists {
		return nil, fmt.Errorf("gateway provider %s not registered", provider)
	}
	return gw, nil
}

// Primary returns the primary gateway instance
func (r *Registry) Primary() (CheckoutGateway, error) {
	if r.primary == "" {
		return nil, fmt.Errorf("no primary gateway configured")
	}
	return r.Get(r.primary)
}

// Close gracefully closes all gateway connections
func (r *Registry) Close(ctx context.Context) error {
	for provider, gw := range r.gateways {
		if err := gw.Close(ctx); err != nil {
			fmt.Printf("Error closing %s gateway: %v\n", provider, err)
		}
	}
	return nil
}
