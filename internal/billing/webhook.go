package billing

import (
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// VerifyWebhookEvent checks the Stripe signature over the raw payload and
// returns the decoded event. Verification fails closed: a missing secret or a
// bad signature is always an error.
func VerifyWebhookEvent(payload []byte, signatureHeader, secret string) (*stripe.Event, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("webhook secret not configured")
	}
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, fmt.Errorf("missing Stripe signature header")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid Stripe signature: %w", err)
	}
	return &event, nil
}

// WebhookCheckoutSession is a minimal representation of a Stripe
// checkout.session event payload.
type WebhookCheckoutSession struct {
	ID           string            `json:"id"`
	Mode         string            `json:"mode"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

// WebhookSubscription is a minimal representation of a Stripe subscription
// event payload. Period bounds live on the subscription items.
type WebhookSubscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	Items             struct {
		Data []struct {
			ID                 string `json:"id"`
			CurrentPeriodStart int64  `json:"current_period_start"`
			CurrentPeriodEnd   int64  `json:"current_period_end"`
			Price              struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

// FirstPriceID returns the price id from the first subscription item.
func (s *WebhookSubscription) FirstPriceID() string {
	for _, item := range s.Items.Data {
		if priceID := strings.TrimSpace(item.Price.ID); priceID != "" {
			return priceID
		}
	}
	return ""
}
