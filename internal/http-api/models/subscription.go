package models

import "time"

// Subscription statuses mirror the Stripe subscription status enum. A local
// record is never deleted, only transitioned to a terminal status.
const (
	SubscriptionStatusActive            = "active"
	SubscriptionStatusTrialing          = "trialing"
	SubscriptionStatusPastDue           = "past_due"
	SubscriptionStatusCanceled          = "canceled"
	SubscriptionStatusIncomplete        = "incomplete"
	SubscriptionStatusIncompleteExpired = "incomplete_expired"
	SubscriptionStatusUnpaid            = "unpaid"
)

// Subscription mirrors the billing provider's view of a user subscription.
// Provider state is authoritative: local status/period fields are only
// written from provider responses or verified webhook events.
type Subscription struct {
	ID                   int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID               string    `json:"user_id" gorm:"type:uuid;not null;index"`
	StripeSubscriptionID string    `json:"stripe_subscription_id" gorm:"uniqueIndex;not null;size:191"`
	StripeCustomerID     string    `json:"stripe_customer_id" gorm:"index;size:191"`
	StripePriceID        string    `json:"stripe_price_id" gorm:"not null;size:191"`
	PlanType             string    `json:"plan_type" gorm:"not null;size:50"` // basic / intermediate / advanced
	Status               string    `json:"status" gorm:"not null;index;size:32"`
	CurrentPeriodStart   time.Time `json:"current_period_start"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
	CancelAtPeriodEnd    bool      `json:"cancel_at_period_end" gorm:"default:false"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsCurrent reports whether business logic treats this subscription as the
// user's live plan.
func (s *Subscription) IsCurrent() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
