package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-booking/internal/services/gateway/sandbox"
)

func TestFactory_CreateSandboxGateway(t *testing.T) {
	f := NewFactory()

	gw, err := f.CreateGateway(context.Background(), ProviderSandbox, &sandbox.Config{KeyID: "sbx_key", KeySecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, ProviderSandbox, gw.GetProvider())

	_, err = f.CreateGateway(context.Background(), ProviderSandbox, "not a config")
	assert.Error(t, err)
}

func TestFactory_RejectsUnknownProvider(t *testing.T) {
	f := NewFactory()

	_, err := f.CreateGateway(context.Background(), Provider("upi"), nil)
	assert.Error(t, err)
}

func TestFactory_SupportedProviders(t *testing.T) {
	f := NewFactory()

	assert.ElementsMatch(t, []Provider{ProviderRazorpay, ProviderSandbox}, f.GetSupportedProviders())
}

func TestRegistry_FirstRegisteredIsPrimary(t *testing.T) {
	r := NewRegistry(NewFactory())
	require.NoError(t, r.Register(context.Background(), ProviderSandbox, &sandbox.Config{KeySecret: "s"}))

	gw, err := r.Primary()
	require.NoError(t, err)
	assert.Equal(t, ProviderSandbox, gw.GetProvider())
}
