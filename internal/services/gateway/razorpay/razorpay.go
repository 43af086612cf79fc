package razorpay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"flight-booking/internal/status"

	pubnub "github.com/pubnub/go/v7"
)

type (
	Config struct {
		BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
		ScriptURL string `json:"scriptUrl" mapstructure:"script_url"`
		KeyID     string `json:"keyId" mapstructure:"key_id"`
		KeySecret string `json:"keySecret" mapstructure:"key_secret"`

		PNSubKey  string `json:"pn_subkey" mapstructure:"pn_subkey"`
		PNUUID    string `json:"pn_uuid" mapstructure:"pn_uuid"`
		PNChannel string `json:"pn_channel" mapstructure:"pn_channel"`
	}

	// Checkout talks to the hosted payment gateway: it loads the widget
	// script, backs each widget with a gateway order and listens for
	// completion events on the gateway's PubNub channel.
	Checkout struct {
		KeyID     string
		keySecret string

		pnSubKey   string
		pnUUID     string
		pnChannels []string

		sub    *subscribe
		client *Client
	}
)

// completion is the wire shape of the widget's completion handler payload.
type completion struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// New returns a new Checkout instance.
func New(ctx context.Context, cfg *Config) (*Checkout, error) {
	client := newClient(ctx, &ClientConfig{
		BaseURL:   cfg.BaseURL,
		ScriptURL: cfg.ScriptURL,
		KeyID:     cfg.KeyID,
		KeySecret: cfg.KeySecret,
	})

	c := &Checkout{
		KeyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,

		pnSubKey:   cfg.PNSubKey,
		pnUUID:     cfg.PNUUID,
		pnChannels: []string{cfg.PNChannel},

		client: client,
	}

	// Completion events may also arrive over the gateway notification
	// channel, not only the confirmation webhook.
	if cfg.PNSubKey != "" {
		pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(c.pnUUID))
		pnCfg.SubscribeKey = c.pnSubKey

		sub, err := c.newSubscription(ctx, pnCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe to gateway notification channel: %v", err)
		}

		sub.pn.AddListener(sub.lis)
		sub.pn.Subscribe().Channels(c.pnChannels).Execute()
		c.sub = sub
	}

	return c, nil
}

type subscribe struct {
	pn  *pubnub.PubNub
	lis *pubnub.Listener
	ch  chan *status.Receipt
}

func (c *Checkout) newSubscription(ctx context.Context, pnCfg *pubnub.Config) (*subscribe, error) {
	sub := &subscribe{
		pn:  pubnub.NewPubNub(pnCfg),
		lis: pubnub.NewListener(),
	}

	go c.processSubscription(ctx, sub)

	return sub, nil
}

func (c *Checkout) processSubscription(ctx context.Context, s *subscribe) {
	listener := s.lis
	for {
		select {
		case st := <-listener.Status:
			switch st.Category {
			case pubnub.PNConnectedCategory:
				log.Println("connected to gateway notification channel")

			case pubnub.PNReconnectedCategory:
				log.Println("reconnected to gateway notification channel")

			case pubnub.PNDisconnectedCategory:
				log.Println("disconnected from gateway notification channel")

			default:
				log.Println("gateway notification channel status:", st.Category)
			}

		case message := <-listener.Message:
			log.Println("gateway notification received:", message.Message)

			data, err := json.Marshal(message.Message)
			if err != nil {
				log.Println(err)
				continue
			}

			var comp completion
			if err := json.Unmarshal(data, &comp); err != nil {
				log.Println(err)
				continue
			}

			c.Notify(&status.Receipt{
				PaymentID: comp.PaymentID,
				OrderID:   comp.OrderID,
				Signature: comp.Signature,
			})

		case <-ctx.Done():
			log.Println("close gateway subscription")
			return
		}
	}
}

// LoadScript fetches the hosted checkout loader once per attempt.
func (c *Checkout) LoadScript(ctx context.Context) error {
	return c.client.fetchScript(ctx)
}

// OpenCheckout creates the gateway order a widget opens against.
func (c *Checkout) OpenCheckout(ctx context.Context, f *status.CheckoutForm) (string, error) {
	return c.client.createOrder(ctx, f)
}

// VerifySignature checks that a receipt was produced by the gateway.
func (c *Checkout) VerifySignature(r *status.Receipt) bool {
	return VerifyCompletionSignature(r.OrderID, r.PaymentID, r.Signature, c.keySecret)
}

// SetReceiptChannel sets the channel receiving verified receipts.
func (c *Checkout) SetReceiptChannel(ch chan *status.Receipt) {
	if c.sub == nil {
		c.sub = &subscribe{}
	}
	c.sub.ch = ch
}

// Notify verifies one completion and forwards it to the receipt channel.
// Unverifiable completions are dropped; an abandoned widget simply never
// produces one.
func (c *Checkout) Notify(r *status.Receipt) {
	if c.sub == nil || c.sub.ch == nil {
		log.Println("razorpay: receipt dropped, no receipt channel set")
		return
	}
	if !c.VerifySignature(r) {
		log.Printf("razorpay: receipt %s dropped, signature mismatch", r.PaymentID)
		return
	}
	c.sub.ch <- r
}

// Close unsubscribes from the gateway notification channel.
func (c *Checkout) Close(ctx context.Context) error {
	if c.sub != nil && c.sub.pn != nil {
		c.sub.pn.Unsubscribe().Channels(c.pnChannels).Execute()
	}
	return nil
}
