package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"valoracademy/internal/billing"
	"valoracademy/internal/http-api/models"
	"valoracademy/internal/http-api/repository"
	"valoracademy/pkg/apperrors"

	"gorm.io/gorm"
)

// SyncResult reports the outcome of a reconciliation batch.
type SyncResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

// SubscriptionService keeps local subscription records consistent with the
// billing provider across checkout, plan changes, cancellation and sync.
// Provider state is authoritative: local writes never overwrite
// provider-confirmed fields except through operations that call the provider
// first.
type SubscriptionService interface {
	CreateCheckoutSession(ctx context.Context, userID, email, planType string) (*billing.CheckoutSession, error)
	CreateFromCheckout(ctx context.Context, userID, stripeSubscriptionID string) (*models.Subscription, error)
	ChangePlan(ctx context.Context, userID string, subscriptionID int64, newPlanType string) (*models.Subscription, error)
	Cancel(ctx context.Context, userID string, subscriptionID int64) error
	GetCurrent(ctx context.Context, userID string) (*models.Subscription, error)
	SyncAll(ctx context.Context) (*SyncResult, error)
	ApplyProviderSubscription(ctx context.Context, sub *billing.WebhookSubscription) error
}

type subscriptionService struct {
	repo    repository.SubscriptionRepository
	client  billing.Client
	plans   *billing.PlanTable
	baseURL string // public base URL for checkout redirect targets
	logger  *slog.Logger
}

func NewSubscriptionService(repo repository.SubscriptionRepository, client billing.Client, plans *billing.PlanTable, baseURL string) SubscriptionService {
	return &subscriptionService{
		repo:    repo,
		client:  client,
		plans:   plans,
		baseURL: baseURL,
		logger:  slog.Default(),
	}
}

// CreateCheckoutSession starts a Stripe checkout for the given plan. When the
// user already has a current subscription its id is stored in the session
// metadata so the eventual create-from-checkout can retire it.
func (s *subscriptionService) CreateCheckoutSession(ctx context.Context, userID, email, planType string) (*billing.CheckoutSession, error) {
	priceID, ok := s.plans.PriceID(planType)
	if !ok {
		return nil, apperrors.ValidationError("billing", "unknown plan type")
	}

	metadata := map[string]string{
		billing.MetadataUserIDKey:   userID,
		billing.MetadataPlanTypeKey: planType,
	}
	if current, err := s.repo.FindCurrentByUser(ctx, userID); err == nil && current != nil {
		metadata[billing.MetadataUpgradeFromKey] = current.StripeSubscriptionID
	}

	session, err := s.client.CreateCheckoutSession(ctx, billing.CheckoutParams{
		PriceID:    priceID,
		Email:      email,
		SuccessURL: s.baseURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.baseURL + "/subscription/cancelled",
		Metadata:   metadata,
	})
	if err != nil {
		return nil, apperrors.Upstream(err, "billing", "failed to create checkout session")
	}
	return session, nil
}

// CreateFromCheckout persists the local record for a provider-confirmed
// subscription. Idempotent: a second call with the same id returns the
// existing record.
func (s *subscriptionService) CreateFromCheckout(ctx context.Context, userID, stripeSubscriptionID string) (*models.Subscription, error) {
	if !billing.IsSafeProviderID(stripeSubscriptionID) {
		return nil, apperrors.ValidationError("billing", "invalid subscription id")
	}

	if existing, err := s.repo.GetByStripeID(ctx, stripeSubscriptionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to look up subscription", http.StatusInternalServerError)
	}

	providerSub, err := s.client.GetSubscription(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, apperrors.Upstream(err, "billing", "failed to retrieve subscription from provider")
	}

	owner, err := providerSub.OwnerID()
	if err != nil {
		return nil, apperrors.ValidationError("billing", "subscription carries no owner metadata")
	}
	if owner != userID {
		return nil, apperrors.Forbidden("subscription belongs to a different user")
	}

	// Best-effort: retiring the previous subscription of an upgrade must not
	// fail the create.
	if previousID := providerSub.UpgradeFrom(); previousID != "" {
		s.retirePreviousSubscription(ctx, previousID)
	}

	// At-most-one-current is an application-level invariant; surface
	// violations in the logs instead of failing the confirmed checkout.
	if current, err := s.repo.FindCurrentByUser(ctx, userID); err == nil && current != nil && current.StripeSubscriptionID != stripeSubscriptionID {
		s.logger.Warn("user has another current subscription",
			"user_id", userID,
			"existing", current.StripeSubscriptionID,
			"new", stripeSubscriptionID,
		)
	}

	planType := providerSub.Metadata[billing.MetadataPlanTypeKey]
	if planType == "" {
		planType = s.plans.PlanForPrice(providerSub.PriceID)
	}

	sub := &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: providerSub.ID,
		StripeCustomerID:     providerSub.CustomerID,
		StripePriceID:        providerSub.PriceID,
		PlanType:             planType,
		Status:               providerSub.Status,
		CurrentPeriodStart:   providerSub.CurrentPeriodStart,
		CurrentPeriodEnd:     providerSub.CurrentPeriodEnd,
		CancelAtPeriodEnd:    providerSub.CancelAtPeriodEnd,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		// a concurrent create for the same id may have won the race; the
		// unique index makes the retry read authoritative
		if existing, lookupErr := s.repo.GetByStripeID(ctx, stripeSubscriptionID); lookupErr == nil {
			return existing, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to persist subscription", http.StatusInternalServerError)
	}
	return sub, nil
}

// retirePreviousSubscription marks the upgraded-away subscription to end at
// period close, provider-side and locally. Failures are logged only.
func (s *subscriptionService) retirePreviousSubscription(ctx context.Context, previousStripeID string) {
	if _, err := s.client.CancelAtPeriodEnd(ctx, previousStripeID); err != nil {
		s.logger.Warn("failed to retire previous subscription at provider",
			"stripe_subscription_id", previousStripeID,
			"error", err,
		)
	}
	if err := s.repo.MarkCancelAtPeriodEndByStripeID(ctx, previousStripeID); err != nil {
		s.logger.Warn("failed to flag previous subscription locally",
			"stripe_subscription_id", previousStripeID,
			"error", err,
		)
	}
}

// ChangePlan swaps the subscription's price with immediate proration. The
// local record is only touched after the provider confirmed the swap.
func (s *subscriptionService) ChangePlan(ctx context.Context, userID string, subscriptionID int64, newPlanType string) (*models.Subscription, error) {
	sub, err := s.requireCurrentOwned(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	priceID, ok := s.plans.PriceID(newPlanType)
	if !ok {
		return nil, apperrors.ValidationError("billing", "unknown plan type")
	}

	providerSub, err := s.client.GetSubscription(ctx, sub.StripeSubscriptionID)
	if err != nil {
		return nil, apperrors.Upstream(err, "billing", "failed to retrieve subscription from provider")
	}

	updated, err := s.client.UpdateSubscriptionPrice(ctx, sub.StripeSubscriptionID, providerSub.ItemID, priceID)
	if err != nil {
		// all-or-nothing: local state stays unchanged
		return nil, apperrors.Upstream(err, "billing", "failed to change plan")
	}

	if err := s.repo.UpdatePlan(ctx, sub.ID, updated.PriceID, newPlanType, updated.CurrentPeriodEnd); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to persist plan change", http.StatusInternalServerError)
	}

	sub.StripePriceID = updated.PriceID
	sub.PlanType = newPlanType
	sub.CurrentPeriodEnd = updated.CurrentPeriodEnd
	return sub, nil
}

// Cancel instructs the provider to end the subscription at period close. The
// status stays active/trialing until sync or a webhook flips it.
func (s *subscriptionService) Cancel(ctx context.Context, userID string, subscriptionID int64) error {
	sub, err := s.requireCurrentOwned(ctx, userID, subscriptionID)
	if err != nil {
		return err
	}

	if _, err := s.client.CancelAtPeriodEnd(ctx, sub.StripeSubscriptionID); err != nil {
		return apperrors.Upstream(err, "billing", "failed to cancel subscription")
	}

	if err := s.repo.MarkCancelAtPeriodEnd(ctx, sub.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to flag cancellation", http.StatusInternalServerError)
	}
	return nil
}

func (s *subscriptionService) GetCurrent(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repo.FindCurrentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to load subscription", http.StatusInternalServerError)
	}
	return sub, nil
}

// SyncAll re-fetches provider state for every non-terminal subscription and
// corrects drift from missed webhooks. Per-item failures are counted and do
// not abort the batch.
func (s *subscriptionService) SyncAll(ctx context.Context) (*SyncResult, error) {
	subs, err := s.repo.ListByStatuses(ctx, []string{
		models.SubscriptionStatusActive,
		models.SubscriptionStatusTrialing,
		models.SubscriptionStatusIncomplete,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to list subscriptions", http.StatusInternalServerError)
	}

	result := &SyncResult{}
	for i := range subs {
		sub := &subs[i]
		result.Processed++

		providerSub, err := s.client.GetSubscription(ctx, sub.StripeSubscriptionID)
		if err != nil {
			result.Errors++
			s.logger.Warn("sync: provider fetch failed",
				"stripe_subscription_id", sub.StripeSubscriptionID,
				"error", err,
			)
			continue
		}

		if !subscriptionDrifted(sub, providerSub) {
			continue
		}

		if err := s.repo.ApplyProviderState(ctx, sub.StripeSubscriptionID,
			providerSub.Status, providerSub.CurrentPeriodStart, providerSub.CurrentPeriodEnd, providerSub.CancelAtPeriodEnd); err != nil {
			result.Errors++
			s.logger.Warn("sync: local update failed",
				"stripe_subscription_id", sub.StripeSubscriptionID,
				"error", err,
			)
			continue
		}
		result.Updated++
	}
	return result, nil
}

func subscriptionDrifted(local *models.Subscription, provider *billing.Subscription) bool {
	return local.Status != provider.Status ||
		!local.CurrentPeriodEnd.Equal(provider.CurrentPeriodEnd) ||
		local.CancelAtPeriodEnd != provider.CancelAtPeriodEnd
}

// ApplyProviderSubscription overwrites local state from a verified webhook
// payload. Unknown subscriptions are ignored: the checkout flow creates the
// row and a later sync will catch anything missed.
func (s *subscriptionService) ApplyProviderSubscription(ctx context.Context, providerSub *billing.WebhookSubscription) error {
	if _, err := s.repo.GetByStripeID(ctx, providerSub.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("webhook for unknown subscription ignored", "stripe_subscription_id", providerSub.ID)
			return nil
		}
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to look up subscription", http.StatusInternalServerError)
	}

	// Deleted-subscription payloads carry no items; keep the stored period
	// bounds and overwrite only status and the cancellation flag.
	if len(providerSub.Items.Data) == 0 {
		if err := s.repo.ApplyProviderStatus(ctx, providerSub.ID,
			providerSub.Status, providerSub.CancelAtPeriodEnd); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to apply provider state", http.StatusInternalServerError)
		}
		return nil
	}

	periodStart := time.Unix(providerSub.Items.Data[0].CurrentPeriodStart, 0)
	periodEnd := time.Unix(providerSub.Items.Data[0].CurrentPeriodEnd, 0)

	if err := s.repo.ApplyProviderState(ctx, providerSub.ID,
		providerSub.Status, periodStart, periodEnd, providerSub.CancelAtPeriodEnd); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to apply provider state", http.StatusInternalServerError)
	}
	return nil
}

// requireCurrentOwned loads a subscription owned by userID with a current
// status; anything else is reported as not found (ownership is not leaked).
func (s *subscriptionService) requireCurrentOwned(ctx context.Context, userID string, subscriptionID int64) (*models.Subscription, error) {
	sub, err := s.repo.GetByIDForUser(ctx, subscriptionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("billing", "subscription not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "billing", "failed to load subscription", http.StatusInternalServerError)
	}
	if !sub.IsCurrent() {
		return nil, apperrors.NotFound("billing", "subscription not found")
	}
	return sub, nil
}
