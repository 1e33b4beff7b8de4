package repository

import (
	"context"
	"fmt"
	"time"

	"valoracademy/internal/http-api/models"

	"gorm.io/gorm"
)

// SubscriptionRepository handles database operations for billing subscriptions.
// Rows are never deleted, only transitioned.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	GetByIDForUser(ctx context.Context, id int64, userID string) (*models.Subscription, error)
	FindCurrentByUser(ctx context.Context, userID string) (*models.Subscription, error)
	ListByStatuses(ctx context.Context, statuses []string) ([]models.Subscription, error)
	// UpdatePlan swaps price/plan/period-end, guarded so it only applies while
	// the subscription is still current.
	UpdatePlan(ctx context.Context, id int64, priceID, planType string, periodEnd time.Time) error
	// MarkCancelAtPeriodEnd sets the flag with the same status guard.
	MarkCancelAtPeriodEnd(ctx context.Context, id int64) error
	MarkCancelAtPeriodEndByStripeID(ctx context.Context, stripeSubscriptionID string) error
	// ApplyProviderState overwrites status/period fields from provider data.
	ApplyProviderState(ctx context.Context, stripeSubscriptionID string, status string, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) error
	// ApplyProviderStatus overwrites status and the cancellation flag only,
	// keeping the stored period bounds.
	ApplyProviderStatus(ctx context.Context, stripeSubscriptionID string, status string, cancelAtPeriodEnd bool) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByIDForUser(ctx context.Context, id int64, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindCurrentByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing}).
		Order("created_at desc").
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByStatuses(ctx context.Context, statuses []string) ([]models.Subscription, error) {
	var list []models.Subscription
	if err := r.db.WithContext(ctx).Where("status IN ?", statuses).Order("id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return list, nil
}

func (r *subscriptionRepository) UpdatePlan(ctx context.Context, id int64, priceID, planType string, periodEnd time.Time) error {
	// The status guard narrows the read-then-write window: a subscription that
	// turned terminal between the read and this write is left untouched.
	result := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status IN ?", id, []string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing}).
		Updates(map[string]interface{}{
			"stripe_price_id":    priceID,
			"plan_type":          planType,
			"current_period_end": periodEnd,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("update subscription plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *subscriptionRepository) MarkCancelAtPeriodEnd(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status IN ?", id, []string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing}).
		Updates(map[string]interface{}{
			"cancel_at_period_end": true,
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark cancel at period end: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *subscriptionRepository) MarkCancelAtPeriodEndByStripeID(ctx context.Context, stripeSubscriptionID string) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]interface{}{
			"cancel_at_period_end": true,
			"updated_at":           time.Now(),
		}).Error
}

func (r *subscriptionRepository) ApplyProviderState(ctx context.Context, stripeSubscriptionID string, status string, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]interface{}{
			"status":               status,
			"current_period_start": periodStart,
			"current_period_end":   periodEnd,
			"cancel_at_period_end": cancelAtPeriodEnd,
			"updated_at":           time.Now(),
		}).Error
}

func (r *subscriptionRepository) ApplyProviderStatus(ctx context.Context, stripeSubscriptionID string, status string, cancelAtPeriodEnd bool) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]interface{}{
			"status":               status,
			"cancel_at_period_end": cancelAtPeriodEnd,
			"updated_at":           time.Now(),
		}).Error
}
