package billing

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"
)

// StripeClient is the production implementation of Client on top of the
// stripe-go SDK. The API client is bound to this instance at construction.
type StripeClient struct {
	api *stripeclient.API
}

// NewStripeClient builds a Stripe-backed billing client for the given secret
// API key.
func NewStripeClient(apiKey string) *StripeClient {
	api := &stripeclient.API{}
	api.Init(apiKey, nil)
	return &StripeClient{api: api}
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: params.Metadata,
		},
		Metadata: params.Metadata,
	}
	if params.CustomerID != "" {
		sessionParams.Customer = stripe.String(params.CustomerID)
	} else if params.Email != "" {
		sessionParams.CustomerEmail = stripe.String(params.Email)
	}

	session, err := c.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (c *StripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	sub, err := c.api.Subscriptions.Get(subscriptionID, &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err)
	}
	return fromStripeSubscription(sub)
}

func (c *StripeClient) UpdateSubscriptionPrice(ctx context.Context, subscriptionID, itemID, priceID string) (*Subscription, error) {
	sub, err := c.api.Subscriptions.Update(subscriptionID, &stripe.SubscriptionParams{
		Params: stripe.Params{Context: ctx},
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("always_invoice"),
	})
	if err != nil {
		return nil, fmt.Errorf("update subscription %s price: %w", subscriptionID, err)
	}
	return fromStripeSubscription(sub)
}

func (c *StripeClient) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*Subscription, error) {
	sub, err := c.api.Subscriptions.Update(subscriptionID, &stripe.SubscriptionParams{
		Params:            stripe.Params{Context: ctx},
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("cancel subscription %s at period end: %w", subscriptionID, err)
	}
	return fromStripeSubscription(sub)
}

// fromStripeSubscription maps the SDK model onto the narrow adapter struct,
// failing fast when a required field is absent instead of carrying the whole
// untyped provider object around.
func fromStripeSubscription(sub *stripe.Subscription) (*Subscription, error) {
	if sub == nil || sub.ID == "" {
		return nil, fmt.Errorf("stripe returned an empty subscription")
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, fmt.Errorf("subscription %s has no items", sub.ID)
	}
	item := sub.Items.Data[0]
	if item.Price == nil || item.Price.ID == "" {
		return nil, fmt.Errorf("subscription %s item has no price", sub.ID)
	}

	out := &Subscription{
		ID:                 sub.ID,
		ItemID:             item.ID,
		PriceID:            item.Price.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: time.Unix(item.CurrentPeriodStart, 0),
		CurrentPeriodEnd:   time.Unix(item.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		Metadata:           sub.Metadata,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out, nil
}
