package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"valoracademy/internal/http-api/models"
	"valoracademy/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProgressService mocks the ProgressService interface
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Report(ctx context.Context, userID string, lessonID int64, lastPosition, totalDuration float64) (*models.LessonProgress, error) {
	args := m.Called(ctx, userID, lessonID, lastPosition, totalDuration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LessonProgress), args.Error(1)
}

func (m *MockProgressService) Get(ctx context.Context, userID string, lessonID int64) (*models.LessonProgress, error) {
	args := m.Called(ctx, userID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LessonProgress), args.Error(1)
}

func (m *MockProgressService) GetByUser(ctx context.Context, userID string) ([]models.LessonProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LessonProgress), args.Error(1)
}

// fakeAuth injects a user identity the way AuthMiddleware would.
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func setupProgressRouter(svc *MockProgressService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewProgressHandler(svc)
	authed := router.Group("", fakeAuth(userID))
	handler.RegisterRoutes(authed.Group("/lessons"), authed.Group("/progress"))
	return router
}

func TestReportProgress_Success(t *testing.T) {
	svc := new(MockProgressService)
	router := setupProgressRouter(svc, "user-1")

	now := time.Now().Truncate(time.Second)
	record := &models.LessonProgress{
		UserID:        "user-1",
		LessonID:      5,
		LastPosition:  120,
		TotalDuration: 600,
		Progress:      0.2,
		UpdatedAt:     now,
	}

	svc.On("Report", mock.Anything, "user-1", int64(5), 120.0, 600.0).Return(record, nil)

	body, _ := json.Marshal(map[string]float64{"lastPosition": 120, "totalDuration": 600})
	req, _ := http.NewRequest("PUT", "/lessons/5/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			LastPosition int     `json:"last_position"`
			Progress     float64 `json:"progress"`
			Completed    bool    `json:"completed"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 120, response.Data.LastPosition)
	assert.InDelta(t, 0.2, response.Data.Progress, 1e-9)
	assert.False(t, response.Data.Completed)

	svc.AssertExpectations(t)
}

func TestReportProgress_ZeroValuesAccepted(t *testing.T) {
	svc := new(MockProgressService)
	router := setupProgressRouter(svc, "user-1")

	record := &models.LessonProgress{UserID: "user-1", LessonID: 5}
	svc.On("Report", mock.Anything, "user-1", int64(5), 0.0, 0.0).Return(record, nil)

	// explicit zeros are valid reports, not missing fields
	body := []byte(`{"lastPosition": 0, "totalDuration": 0}`)
	req, _ := http.NewRequest("PUT", "/lessons/5/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestReportProgress_MissingFields(t *testing.T) {
	svc := new(MockProgressService)
	router := setupProgressRouter(svc, "user-1")

	body := []byte(`{"lastPosition": 120}`)
	req, _ := http.NewRequest("PUT", "/lessons/5/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.CodeValidationFailed))
	svc.AssertNotCalled(t, "Report", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportProgress_InvalidLessonID(t *testing.T) {
	svc := new(MockProgressService)
	router := setupProgressRouter(svc, "user-1")

	body := []byte(`{"lastPosition": 120, "totalDuration": 600}`)
	req, _ := http.NewRequest("PUT", "/lessons/abc/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportProgress_LessonNotFound(t *testing.T) {
	svc := new(MockProgressService)
	router := setupProgressRouter(svc, "user-1")

	svc.On("Report", mock.Anything, "user-1", int64(99), 120.0, 600.0).
		Return(nil, apperrors.NotFound("progress", "lesson not found"))

	body := []byte(`{"lastPosition": 120, "totalDuration": 600}`)
	req, _ := http.NewRequest("PUT", "/lessons/99/progress", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestGetProgress_Success(t *testing.T) {
	svc := new(MockProgressService)
	router := setupProgressRouter(svc, "user-1")

	record := &models.LessonProgress{
		UserID:        "user-1",
		LessonID:      5,
		LastPosition:  540,
		TotalDuration: 600,
		Progress:      0.9,
		Completed:     true,
	}
	svc.On("Get", mock.Anything, "user-1", int64(5)).Return(record, nil)

	req, _ := http.NewRequest("GET", "/lessons/5/progress", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Completed bool `json:"completed"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Data.Completed)
	svc.AssertExpectations(t)
}

func TestGetProgress_NoRecordYet(t *testing.T) {
	svc := new(MockProgressService)
	router := setupProgressRouter(svc, "user-1")

	svc.On("Get", mock.Anything, "user-1", int64(5)).Return(nil, nil)

	req, _ := http.NewRequest("GET", "/lessons/5/progress", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Nil(t, response["data"])
	svc.AssertExpectations(t)
}

func TestGetAllProgress_Success(t *testing.T) {
	svc := new(MockProgressService)
	router := setupProgressRouter(svc, "user-1")

	list := []models.LessonProgress{
		{UserID: "user-1", LessonID: 1, Progress: 1.0, Completed: true},
		{UserID: "user-1", LessonID: 2, Progress: 0.3},
	}
	svc.On("GetByUser", mock.Anything, "user-1").Return(list, nil)

	req, _ := http.NewRequest("GET", "/progress", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []struct {
			LessonID  int64 `json:"lesson_id"`
			Completed bool  `json:"completed"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Data, 2)
	assert.True(t, response.Data[0].Completed)
	svc.AssertExpectations(t)
}

func TestGetAllProgress_Unauthenticated(t *testing.T) {
	svc := new(MockProgressService)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewProgressHandler(svc)
	// no auth middleware, so no user identity on the context
	handler.RegisterRoutes(router.Group("/lessons"), router.Group("/progress"))

	req, _ := http.NewRequest("GET", "/progress", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.CodeUnauthorized))
	svc.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
}
