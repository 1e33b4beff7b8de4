package handler

import (
	"context"
	"net/http"
	"time"

	"valoracademy/internal/http-api/dto"
	"valoracademy/internal/http-api/middleware"
	"valoracademy/internal/http-api/service"
	"valoracademy/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// RegisterRoutes registers the billing endpoints. Sync is admin-only; the
// rest require an authenticated user.
func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/create-checkout-session", h.CreateCheckoutSession)
	rg.POST("/create-subscription", h.CreateSubscription)
	rg.GET("/subscription", h.GetCurrent)
	rg.POST("/subscription/cancel", h.Cancel)
	rg.POST("/subscription/change-plan", h.ChangePlan)
	rg.POST("/sync-subscriptions", middleware.RequireRole("admin"), h.SyncAll)
}

func (h *SubscriptionHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.Unauthorized("user not authenticated"))
		return
	}

	var req dto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	// checkout reaches out to Stripe, give it more room than DB-only calls
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	email, _ := c.Get("username")
	session, err := h.subscriptionService.CreateCheckoutSession(ctx, userID, emailOrEmpty(email), req.PlanType)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreateCheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.Unauthorized("user not authenticated"))
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	sub, err := h.subscriptionService.CreateFromCheckout(ctx, userID, req.StripeSubscriptionID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": dto.SubscriptionFromModel(*sub)})
}

func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.Unauthorized("user not authenticated"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	sub, err := h.subscriptionService.GetCurrent(ctx, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	if sub == nil {
		c.JSON(http.StatusOK, gin.H{"subscription": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": dto.SubscriptionFromModel(*sub)})
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.Unauthorized("user not authenticated"))
		return
	}

	var req dto.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.subscriptionService.Cancel(ctx, userID, req.SubscriptionID); err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subscription will be cancelled at the end of the billing period"})
}

func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.Unauthorized("user not authenticated"))
		return
	}

	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	sub, err := h.subscriptionService.ChangePlan(ctx, userID, req.SubscriptionID, req.NewPlanType)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": dto.SubscriptionFromModel(*sub)})
}

func (h *SubscriptionHandler) SyncAll(c *gin.Context) {
	// the batch talks to Stripe once per subscription; allow a longer window
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	result, err := h.subscriptionService.SyncAll(ctx)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func emailOrEmpty(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
