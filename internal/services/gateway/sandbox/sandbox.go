// Package sandbox is the in-process checkout gateway for development.
// Orders are approved locally: each opened checkout schedules its own
// completion receipt after the configured delay, signed the same way
// the hosted gateway signs, so the rest of the pipeline runs unchanged.
package sandbox

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"flight-booking/internal/status"
	"flight-booking/utils"
)

type Config struct {
	KeyID     string `json:"keyId" mapstructure:"key_id"`
	KeySecret string `json:"keySecret" mapstructure:"key_secret"`

	// CompletionDelay is how long after OpenCheckout the synthetic
	// completion fires. Zero completes immediately.
	CompletionDelay time.Duration `json:"completionDelay" mapstructure:"completion_delay"`
}

// Checkout auto-approves every opened order.
type Checkout struct {
	KeyID     string
	keySecret string
	delay     time.Duration

	ch chan *status.Receipt
}

func New(cfg *Config) *Checkout {
	return &Checkout{
		KeyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		delay:     cfg.CompletionDelay,
	}
}

// LoadScript is a no-op; there is no hosted loader to fetch.
func (c *Checkout) LoadScript(ctx context.Context) error {
	return nil
}

// OpenCheckout mints a local order and schedules its completion.
func (c *Checkout) OpenCheckout(ctx context.Context, f *status.CheckoutForm) (string, error) {
	orderID, err := utils.GenerateReference("sbx_order")
	if err != nil {
		return "", err
	}
	paymentID, err := utils.GenerateReference("sbx_pay")
	if err != nil {
		return "", err
	}

	r := &status.Receipt{
		PaymentID: paymentID,
		OrderID:   orderID,
		Signature: c.sign(orderID, paymentID),
	}
	go func() {
		time.Sleep(c.delay)
		c.Notify(r)
	}()

	return orderID, nil
}

func (c *Checkout) sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks that a receipt carries this sandbox's signature.
func (c *Checkout) VerifySignature(r *status.Receipt) bool {
	expected := c.sign(r.OrderID, r.PaymentID)
	return hmac.Equal([]byte(r.Signature), []byte(expected))
}

// SetReceiptChannel sets the channel receiving verified receipts.
func (c *Checkout) SetReceiptChannel(ch chan *status.Receipt) {
	c.ch = ch
}

// Notify verifies one completion and forwards it to the receipt channel.
// Unverifiable completions are dropped.
func (c *Checkout) Notify(r *status.Receipt) {
	if c.ch == nil {
		log.Println("sandbox: receipt dropped, no receipt channel set")
		return
	}
	if !c.VerifySignature(r) {
		log.Printf("sandbox: receipt %s dropped, signature mismatch", r.PaymentID)
		return
	}
	c.ch <- r
}

// Close has nothing to release.
func (c *Checkout) Close(ctx context.Context) error {
	return nil
}
