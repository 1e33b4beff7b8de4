package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"valoracademy/internal/cache"
	"valoracademy/internal/http-api/models"
	"valoracademy/internal/http-api/repository"
	"valoracademy/pkg/apperrors"

	"gorm.io/gorm"
)

type ProgressService interface {
	// Report applies a raw client playback report and returns the stored,
	// normalized record.
	Report(ctx context.Context, userID string, lessonID int64, lastPosition, totalDuration float64) (*models.LessonProgress, error)
	Get(ctx context.Context, userID string, lessonID int64) (*models.LessonProgress, error)
	GetByUser(ctx context.Context, userID string) ([]models.LessonProgress, error)
}

// LessonGetter is the slice of the lesson catalog the progress service needs
// for existence checks.
type LessonGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Lesson, error)
}

type progressService struct {
	repo       repository.ProgressRepository
	lessonRepo LessonGetter
	cache      *cache.ProgressCache
	now        func() time.Time
}

// NewProgressService wires the progress repository with the lesson catalog
// for existence checks and an optional Redis cache (nil disables caching).
func NewProgressService(repo repository.ProgressRepository, lessonRepo LessonGetter, progressCache *cache.ProgressCache) ProgressService {
	return &progressService{
		repo:       repo,
		lessonRepo: lessonRepo,
		cache:      progressCache,
		now:        time.Now,
	}
}

func (s *progressService) Report(ctx context.Context, userID string, lessonID int64, lastPosition, totalDuration float64) (*models.LessonProgress, error) {
	if _, err := s.lessonRepo.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("progress", "lesson not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "progress", "failed to load lesson", http.StatusInternalServerError)
	}

	prev, err := s.repo.GetProgressByLessonID(ctx, userID, lessonID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "progress", "failed to load progress", http.StatusInternalServerError)
		}
		prev = nil
	}

	record, err := NormalizeProgress(prev, lastPosition, totalDuration, s.now())
	if err != nil {
		return nil, err
	}
	record.UserID = userID
	record.LessonID = lessonID

	// the upsert writes the merged row back into record, so a racing report
	// never caches or returns less than the stored maximum
	if err := s.repo.UpsertProgress(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "progress", "failed to save progress", http.StatusInternalServerError)
	}

	// write-through: cache failures degrade to DB only
	s.cache.Save(ctx, record)

	return record, nil
}

func (s *progressService) Get(ctx context.Context, userID string, lessonID int64) (*models.LessonProgress, error) {
	if cached, ok := s.cache.Get(ctx, userID, lessonID); ok {
		return cached, nil
	}

	progress, err := s.repo.GetProgressByLessonID(ctx, userID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no report yet, not an error
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "progress", "failed to load progress", http.StatusInternalServerError)
	}

	s.cache.Save(ctx, progress)
	return progress, nil
}

func (s *progressService) GetByUser(ctx context.Context, userID string) ([]models.LessonProgress, error) {
	list, err := s.repo.GetAllProgress(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "progress", "failed to load progress list", http.StatusInternalServerError)
	}
	return list, nil
}
