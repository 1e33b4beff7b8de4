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

type CategoryService interface {
	GetAll(ctx context.Context) ([]models.LessonCategory, error)
	Create(ctx context.Context, category *models.LessonCategory) error
	Update(ctx context.Context, id int64, category *models.LessonCategory) error
	Delete(ctx context.Context, id int64) error
	SetDefault(ctx context.Context, id int64) error
}

type categoryService struct {
	repo *repository.CategoryRepo
}

func NewCategoryService(repo *repository.CategoryRepo) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) GetAll(ctx context.Context) ([]models.LessonCategory, error) {
	return s.repo.GetAll(ctx)
}

func (s *categoryService) Create(ctx context.Context, category *models.LessonCategory) error {
	if strings.TrimSpace(category.Name) == "" {
		return apperrors.ValidationError("catalog", "category name required")
	}
	category.Name = strings.TrimSpace(category.Name)
	return s.repo.Create(ctx, category)
}

func (s *categoryService) Update(ctx context.Context, id int64, category *models.LessonCategory) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("catalog", "category not found")
		}
		return err
	}
	if strings.TrimSpace(category.Name) == "" {
		return apperrors.ValidationError("catalog", "category name required")
	}
	existing.Name = strings.TrimSpace(category.Name)
	existing.Description = category.Description
	existing.SortOrder = category.SortOrder
	return s.repo.Update(ctx, existing)
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("catalog", "category not found")
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetDefault makes one category the default; the transactional repository
// call keeps the flag exclusive among siblings.
func (s *categoryService) SetDefault(ctx context.Context, id int64) error {
	if err := s.repo.SetDefault(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("catalog", "category not found")
		}
		return err
	}
	return nil
}
