package dto

import (
	"time"

	"valoracademy/internal/http-api/models"
)

// DTOs for billing endpoints.

type CreateCheckoutSessionRequest struct {
	PlanType string `json:"planType" binding:"required,oneof=basic intermediate advanced"`
}

type CreateCheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type CreateSubscriptionRequest struct {
	StripeSubscriptionID string `json:"stripeSubscriptionId" binding:"required"`
}

type ChangePlanRequest struct {
	SubscriptionID int64  `json:"subscriptionId" binding:"required,gt=0"`
	NewPlanType    string `json:"newPlanType" binding:"required,oneof=basic intermediate advanced"`
}

type CancelSubscriptionRequest struct {
	SubscriptionID int64 `json:"subscriptionId" binding:"required,gt=0"`
}

type SubscriptionResponse struct {
	ID                   int64     `json:"id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id"`
	PlanType             string    `json:"plan_type"`
	StripePriceID        string    `json:"stripe_price_id"`
	Status               string    `json:"status"`
	CurrentPeriodStart   time.Time `json:"current_period_start"`
	CurrentPeriodEnd     time.Time `json:"current_period_end"`
	CancelAtPeriodEnd    bool      `json:"cancel_at_period_end"`
}

func SubscriptionFromModel(sub models.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                   sub.ID,
		StripeSubscriptionID: sub.StripeSubscriptionID,
		PlanType:             sub.PlanType,
		StripePriceID:        sub.StripePriceID,
		Status:               sub.Status,
		CurrentPeriodStart:   sub.CurrentPeriodStart,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	}
}
