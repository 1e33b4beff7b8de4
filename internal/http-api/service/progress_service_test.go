package service

import (
	"context"
	"testing"

	"valoracademy/internal/http-api/models"
	"valoracademy/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetAllProgress(ctx context.Context, userID string) ([]models.LessonProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LessonProgress), args.Error(1)
}

func (m *MockProgressRepository) GetProgressByLessonID(ctx context.Context, userID string, lessonID int64) (*models.LessonProgress, error) {
	args := m.Called(ctx, userID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LessonProgress), args.Error(1)
}

func (m *MockProgressRepository) UpsertProgress(ctx context.Context, progress *models.LessonProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

type MockLessonGetter struct {
	mock.Mock
}

func (m *MockLessonGetter) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func newTestProgressService(repo *MockProgressRepository, lessons *MockLessonGetter) ProgressService {
	return NewProgressService(repo, lessons, nil)
}

func TestReport_PersistsNormalizedRecord(t *testing.T) {
	repo := new(MockProgressRepository)
	lessons := new(MockLessonGetter)
	svc := newTestProgressService(repo, lessons)
	ctx := context.Background()

	lessons.On("GetByID", ctx, int64(5)).Return(&models.Lesson{ID: 5}, nil)
	repo.On("GetProgressByLessonID", ctx, "user-1", int64(5)).Return(nil, gorm.ErrRecordNotFound)
	repo.On("UpsertProgress", ctx, mock.AnythingOfType("*models.LessonProgress")).Return(nil)

	record, err := svc.Report(ctx, "user-1", 5, 120, 600)

	require.NoError(t, err)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, int64(5), record.LessonID)
	assert.Equal(t, 120, record.LastPosition)
	assert.InDelta(t, 0.2, record.Progress, 1e-9)
	repo.AssertExpectations(t)
}

func TestReport_LessonMissing(t *testing.T) {
	repo := new(MockProgressRepository)
	lessons := new(MockLessonGetter)
	svc := newTestProgressService(repo, lessons)
	ctx := context.Background()

	lessons.On("GetByID", ctx, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Report(ctx, "user-1", 99, 120, 600)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	repo.AssertNotCalled(t, "UpsertProgress", mock.Anything, mock.Anything)
}

func TestReport_ReturnsStoredRowAfterMerge(t *testing.T) {
	repo := new(MockProgressRepository)
	lessons := new(MockLessonGetter)
	svc := newTestProgressService(repo, lessons)
	ctx := context.Background()

	lessons.On("GetByID", ctx, int64(5)).Return(&models.Lesson{ID: 5}, nil)
	repo.On("GetProgressByLessonID", ctx, "user-1", int64(5)).Return(&models.LessonProgress{
		UserID: "user-1", LessonID: 5, LastPosition: 100, TotalDuration: 600, Progress: 100.0 / 600.0,
	}, nil)
	// simulate losing a race: between the read above and the upsert, another
	// report pushed the stored row to 300s. The upsert merge keeps the
	// maximum and writes the stored row back into the record.
	repo.On("UpsertProgress", ctx, mock.AnythingOfType("*models.LessonProgress")).
		Run(func(args mock.Arguments) {
			rec := args.Get(1).(*models.LessonProgress)
			rec.LastPosition = 300
			rec.Progress = 0.5
		}).Return(nil)

	record, err := svc.Report(ctx, "user-1", 5, 150, 600)

	require.NoError(t, err)
	assert.Equal(t, 300, record.LastPosition)
	assert.InDelta(t, 0.5, record.Progress, 1e-9)
}

func TestGet_NoRecordIsNotAnError(t *testing.T) {
	repo := new(MockProgressRepository)
	lessons := new(MockLessonGetter)
	svc := newTestProgressService(repo, lessons)
	ctx := context.Background()

	repo.On("GetProgressByLessonID", ctx, "user-1", int64(5)).Return(nil, gorm.ErrRecordNotFound)

	record, err := svc.Get(ctx, "user-1", 5)

	require.NoError(t, err)
	assert.Nil(t, record)
}
