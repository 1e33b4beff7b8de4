package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"valoracademy/internal/billing"
	"valoracademy/internal/http-api/models"
	"valoracademy/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

// MockSubscriptionService mocks the SubscriptionService interface
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) CreateCheckoutSession(ctx context.Context, userID, email, planType string) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, userID, email, planType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func (m *MockSubscriptionService) CreateFromCheckout(ctx context.Context, userID, stripeSubscriptionID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID, stripeSubscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) ChangePlan(ctx context.Context, userID string, subscriptionID int64, newPlanType string) (*models.Subscription, error) {
	args := m.Called(ctx, userID, subscriptionID, newPlanType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, userID string, subscriptionID int64) error {
	args := m.Called(ctx, userID, subscriptionID)
	return args.Error(0)
}

func (m *MockSubscriptionService) GetCurrent(ctx context.Context, userID string) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) SyncAll(ctx context.Context) (*service.SyncResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncResult), args.Error(1)
}

func (m *MockSubscriptionService) ApplyProviderSubscription(ctx context.Context, sub *billing.WebhookSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

const testWebhookSecret = "whsec_test_secret"

func setupWebhookRouter(svc *MockSubscriptionService, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewWebhookHandler(svc, secret, nil)
	handler.RegisterRoutes(router.Group("/api"))
	return router
}

// signedWebhookRequest signs payload the way Stripe signs deliveries.
func signedWebhookRequest(t *testing.T, secret, payload string) *http.Request {
	t.Helper()
	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestWebhook_RejectsMissingSignature(t *testing.T) {
	svc := new(MockSubscriptionService)
	router := setupWebhookRouter(svc, testWebhookSecret)

	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateFromCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_RejectsWrongSecretSignature(t *testing.T) {
	svc := new(MockSubscriptionService)
	router := setupWebhookRouter(svc, testWebhookSecret)

	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`
	req := signedWebhookRequest(t, "whsec_other_secret", payload)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateFromCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_RejectsWhenSecretNotConfigured(t *testing.T) {
	svc := new(MockSubscriptionService)
	router := setupWebhookRouter(svc, "")

	// even a well-signed delivery is refused without a configured secret
	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`
	req := signedWebhookRequest(t, testWebhookSecret, payload)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateFromCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_AcksUnhandledEventType(t *testing.T) {
	svc := new(MockSubscriptionService)
	router := setupWebhookRouter(svc, testWebhookSecret)

	payload := `{"id":"evt_1","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`
	req := signedWebhookRequest(t, testWebhookSecret, payload)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertNotCalled(t, "CreateFromCheckout", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "ApplyProviderSubscription", mock.Anything, mock.Anything)
}

func TestWebhook_CheckoutCompletedCreatesSubscription(t *testing.T) {
	svc := new(MockSubscriptionService)
	router := setupWebhookRouter(svc, testWebhookSecret)

	svc.On("CreateFromCheckout", mock.Anything, "user-1", "sub_123").
		Return(&models.Subscription{ID: 1, StripeSubscriptionID: "sub_123"}, nil)

	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","mode":"subscription","subscription":"sub_123","metadata":{"user_id":"user-1"}}}}`
	req := signedWebhookRequest(t, testWebhookSecret, payload)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestWebhook_CheckoutWithoutUserMetadataAcked(t *testing.T) {
	svc := new(MockSubscriptionService)
	router := setupWebhookRouter(svc, testWebhookSecret)

	// a checkout session this service did not create has nothing to attach to
	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","mode":"subscription","subscription":"sub_123","metadata":{}}}}`
	req := signedWebhookRequest(t, testWebhookSecret, payload)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertNotCalled(t, "CreateFromCheckout", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_HandledEventFailureReturns500(t *testing.T) {
	svc := new(MockSubscriptionService)
	router := setupWebhookRouter(svc, testWebhookSecret)

	svc.On("CreateFromCheckout", mock.Anything, "user-1", "sub_123").
		Return(nil, errors.New("provider unavailable"))

	// a 5xx keeps the delivery in Stripe's retry queue
	payload := `{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","mode":"subscription","subscription":"sub_123","metadata":{"user_id":"user-1"}}}}`
	req := signedWebhookRequest(t, testWebhookSecret, payload)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhook_SubscriptionUpdatedAppliesProviderState(t *testing.T) {
	svc := new(MockSubscriptionService)
	router := setupWebhookRouter(svc, testWebhookSecret)

	svc.On("ApplyProviderSubscription", mock.Anything, mock.MatchedBy(func(sub *billing.WebhookSubscription) bool {
		return sub.ID == "sub_123" && sub.Status == "past_due"
	})).Return(nil)

	payload := `{"id":"evt_1","object":"event","type":"customer.subscription.updated","data":{"object":{"id":"sub_123","status":"past_due","cancel_at_period_end":false}}}`
	req := signedWebhookRequest(t, testWebhookSecret, payload)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
