package billing

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Metadata keys this service writes into Stripe checkout sessions and reads
// back from subscriptions. Stripe's metadata bag is free-form strings, so
// parsing is strict and absence is handled explicitly.
const (
	MetadataUserIDKey      = "user_id"
	MetadataPlanTypeKey    = "plan_type"
	MetadataUpgradeFromKey = "upgrade_from"
)

// Subscription is a narrow view of a Stripe subscription: only the fields the
// reconciler needs, mapped from the typed SDK model. Period bounds come from
// the first subscription item.
type Subscription struct {
	ID                 string
	CustomerID         string
	ItemID             string
	PriceID            string
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	Metadata           map[string]string
}

// OwnerID returns the user id stored in the subscription metadata, or an
// error if the key is missing or blank.
func (s *Subscription) OwnerID() (string, error) {
	owner := strings.TrimSpace(s.Metadata[MetadataUserIDKey])
	if owner == "" {
		return "", fmt.Errorf("subscription %s: metadata key %q missing", s.ID, MetadataUserIDKey)
	}
	return owner, nil
}

// UpgradeFrom returns the previous subscription id when the checkout was an
// upgrade, or "" when it was a fresh purchase.
func (s *Subscription) UpgradeFrom() string {
	return strings.TrimSpace(s.Metadata[MetadataUpgradeFromKey])
}

// CheckoutSession is the subset of a Stripe checkout session the handlers use.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutParams describes a subscription checkout to create.
type CheckoutParams struct {
	PriceID    string
	CustomerID string // optional, reuse an existing Stripe customer
	Email      string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Client is the billing-provider surface the reconciler depends on. It is an
// injected instance, never a package-level singleton, so tests can substitute
// a mock and no hidden cross-request state exists.
type Client interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	// UpdateSubscriptionPrice swaps the subscription item's price with
	// proration behavior "always_invoice" (charge/credit immediately).
	UpdateSubscriptionPrice(ctx context.Context, subscriptionID, itemID, priceID string) (*Subscription, error)
	// CancelAtPeriodEnd flags the subscription to end at period close; the
	// status itself stays active/trialing until then.
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*Subscription, error)
}

// IsSafeProviderID validates that a Stripe id (sub_..., cus_...) is safe for
// use as a lookup key.
func IsSafeProviderID(id string) bool {
	if len(id) < 5 || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			continue
		}
		return false
	}
	return true
}
