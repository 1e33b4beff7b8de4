package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"valoracademy/internal/billing"
	"valoracademy/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// webhookMaxBodyBytes caps the payload we will read from Stripe. Stripe's own
// recommendation for webhook bodies.
const webhookMaxBodyBytes = 65536

type WebhookHandler struct {
	subscriptionService service.SubscriptionService
	webhookSecret       string
	logger              *slog.Logger
}

func NewWebhookHandler(subscriptionService service.SubscriptionService, webhookSecret string, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{
		subscriptionService: subscriptionService,
		webhookSecret:       webhookSecret,
		logger:              logger,
	}
}

func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook", h.HandleStripeWebhook)
}

// HandleStripeWebhook verifies the Stripe signature and applies the event.
// Events we do not handle are acknowledged with 200 so Stripe stops retrying
// them; failures on events we do handle return 500 so Stripe retries.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookMaxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := billing.VerifyWebhookEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("rejected Stripe webhook", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	switch event.Type {
	case "checkout.session.completed":
		err = h.handleCheckoutCompleted(ctx, event.Data.Raw)
	case "customer.subscription.updated", "customer.subscription.deleted":
		err = h.handleSubscriptionChanged(ctx, event.Data.Raw)
	default:
		h.logger.Debug("ignoring Stripe event", "type", event.Type)
	}

	if err != nil {
		h.logger.Error("failed to process Stripe event", "type", event.Type, "event_id", event.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) handleCheckoutCompleted(ctx context.Context, raw json.RawMessage) error {
	var session billing.WebhookCheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return err
	}
	if session.Mode != "subscription" || session.Subscription == "" {
		h.logger.Debug("skipping non-subscription checkout session", "session_id", session.ID)
		return nil
	}

	userID := session.Metadata[billing.MetadataUserIDKey]
	if userID == "" {
		// a session we did not create; nothing to attach it to
		h.logger.Warn("checkout session without user metadata", "session_id", session.ID)
		return nil
	}

	_, err := h.subscriptionService.CreateFromCheckout(ctx, userID, session.Subscription)
	return err
}

func (h *WebhookHandler) handleSubscriptionChanged(ctx context.Context, raw json.RawMessage) error {
	var sub billing.WebhookSubscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return err
	}
	return h.subscriptionService.ApplyProviderSubscription(ctx, &sub)
}
