package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"flight-booking/internal/status"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	ScriptURL string `json:"scriptUrl" mapstructure:"script_url"`
	KeyID     string `json:"keyId" mapstructure:"key_id"`
	KeySecret string `json:"keySecret" mapstructure:"key_secret"`
}

type Client struct {
	// baseURL is the base url of the gateway REST backend.
	baseURL string

	// scriptURL is the hosted checkout loader fetched per attempt.
	scriptURL string

	// keyID is the public key embedded in the widget.
	keyID string

	// keySecret signs orders and verifies completion signatures.
	keySecret string

	// hc is the http client.
	hc *http.Client
}

func newClient(_ context.Context, c *ClientConfig) *Client {
	return &Client{
		baseURL:   c.BaseURL,
		scriptURL: c.ScriptURL,
		keyID:     c.KeyID,
		keySecret: c.KeySecret,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// fetchScript downloads the hosted checkout loader. A non-OK status or an
// empty body is treated the same as an unreachable host: the widget for
// this attempt can never open.
func (c *Client) fetchScript(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL, nil)
	if err != nil {
		return fmt.Errorf("fetchScript: http.NewReq: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("fetchScript: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetchScript: resp.StatusCode: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fetchScript: io.ReadAll: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("fetchScript: empty script body")
	}

	return nil
}

// createOrder registers a payable order with the gateway and returns its id.
func (c *Client) createOrder(ctx context.Context, f *status.CheckoutForm) (string, error) {
	payload := map[string]any{
		"amount":   f.AmountMinor,
		"currency": f.Currency,
		"receipt":  f.Reference,
		"notes":    f.Notes,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("createOrder: json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/orders", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("createOrder: http.NewReq: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("createOrder: http.Do: %w", err)
	}
	defer resp.Body.Close()

	var reply struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Error  struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return "", fmt.Errorf("createOrder: json.Decode: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("createOrder: resp.StatusCode: %d: %s", resp.StatusCode, reply.Error.Description)
	}
	if reply.ID == "" {
		return "", fmt.Errorf("createOrder: empty order id in reply")
	}

	return reply.ID, nil
}
