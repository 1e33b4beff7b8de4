package service

import (
	"context"
	"errors"
	"strings"

	"valoracademy/internal/http-api/models"
	"valoracademy/internal/http-api/repository"
	"valoracademy/pkg/apperrors"

	"gorm.io/gorm"
)

type LessonService interface {
	GetAll(ctx context.Context, page, pageSize int) ([]models.Lesson, int64, error)
	GetByCategory(ctx context.Context, categoryID int64) ([]models.Lesson, error)
	GetByID(ctx context.Context, id int64) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, id int64, lesson *models.Lesson) error
	Delete(ctx context.Context, id int64) error
}

type lessonService struct {
	repo         *repository.LessonRepo
	categoryRepo *repository.CategoryRepo
}

func NewLessonService(repo *repository.LessonRepo, categoryRepo *repository.CategoryRepo) LessonService {
	return &lessonService{repo: repo, categoryRepo: categoryRepo}
}

func (s *lessonService) GetAll(ctx context.Context, page, pageSize int) ([]models.Lesson, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.GetAll(ctx, page, pageSize)
}

func (s *lessonService) GetByCategory(ctx context.Context, categoryID int64) ([]models.Lesson, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("catalog", "category not found")
		}
		return nil, err
	}
	return s.repo.GetByCategory(ctx, categoryID)
}

func (s *lessonService) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("catalog", "lesson not found")
		}
		return nil, err
	}
	return lesson, nil
}

func (s *lessonService) Create(ctx context.Context, lesson *models.Lesson) error {
	if strings.TrimSpace(lesson.Title) == "" {
		return apperrors.ValidationError("catalog", "lesson title required")
	}
	if strings.TrimSpace(lesson.VideoURL) == "" {
		return apperrors.ValidationError("catalog", "lesson video url required")
	}
	if lesson.DurationSeconds < 0 {
		return apperrors.ValidationError("catalog", "lesson duration must be non-negative")
	}
	if _, err := s.categoryRepo.GetByID(ctx, lesson.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ValidationError("catalog", "category does not exist")
		}
		return err
	}
	lesson.Title = strings.TrimSpace(lesson.Title)
	return s.repo.Create(ctx, lesson)
}

func (s *lessonService) Update(ctx context.Context, id int64, lesson *models.Lesson) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	existing.Title = lesson.Title
	existing.Description = lesson.Description
	existing.VideoURL = lesson.VideoURL
	existing.DurationSeconds = lesson.DurationSeconds
	existing.SortOrder = lesson.SortOrder
	if lesson.CategoryID != 0 && lesson.CategoryID != existing.CategoryID {
		if _, err := s.categoryRepo.GetByID(ctx, lesson.CategoryID); err != nil {
			return apperrors.ValidationError("catalog", "category does not exist")
		}
		existing.CategoryID = lesson.CategoryID
	}
	existing.Category = nil // avoid re-saving the preloaded association

	return s.repo.Update(ctx, existing)
}

func (s *lessonService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
