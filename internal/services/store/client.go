package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flight-booking/internal/status"
	"flight-booking/models"
)

// BookingStore is the persistence boundary: one call durably stores one
// booking payload or rejects it. Calls are attempted exactly once.
type BookingStore interface {
	Submit(ctx context.Context, p models.BookingPayload) (bookingID string, err error)
}

type ClientConfig struct {
	BaseURL string        `json:"baseUrl" mapstructure:"base_url"`
	Token   string        `json:"token" mapstructure:"token"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Client submits booking payloads to the book-flight endpoint over HTTP.
type Client struct {
	// baseURL is the base url of the booking backend.
	baseURL string

	// token authenticates server-to-server submissions.
	token string

	// hc is the http client.
	hc *http.Client
}

func NewClient(c *ClientConfig) *Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: c.BaseURL,
		token:   c.Token,

		// set http client with timeout.
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit posts one leg's payload. A non-OK status of any shape is a leg
// failure; the response message is propagated when present, otherwise a
// generic status-coded message is used.
func (c *Client) Submit(ctx context.Context, p models.BookingPayload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("submitBooking: json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/v1/book-flight", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("submitBooking: http.NewReq: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &status.PersistenceError{
			Leg:     string(p.Leg),
			Message: fmt.Sprintf("booking request failed: %v", err),
		}
	}
	defer resp.Body.Close()

	var reply struct {
		Message   string `json:"message"`
		BookingID string `json:"booking_id"`
	}
	// A reply body is optional on success; only the status code is contract.
	_ = json.NewDecoder(resp.Body).Decode(&reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := reply.Message
		if msg == "" {
			msg = fmt.Sprintf("API Error: %d", resp.StatusCode)
		}
		return "", &status.PersistenceError{
			Leg:        string(p.Leg),
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	return reply.BookingID, nil
}
