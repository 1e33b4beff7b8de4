package repository

import (
	"context"
	"fmt"

	"valoracademy/internal/http-api/models"

	"gorm.io/gorm"
)

type LessonRepo struct {
	db *gorm.DB
}

func NewLessonRepo(db *gorm.DB) *LessonRepo {
	return &LessonRepo{db: db}
}

func (r *LessonRepo) GetAll(ctx context.Context, page, pageSize int) ([]models.Lesson, int64, error) {
	var list []models.Lesson
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Lesson{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).
		Order("sort_order asc, id asc").
		Offset(offset).Limit(pageSize).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get lessons: %w", err)
	}
	return list, total, nil
}

func (r *LessonRepo) GetByCategory(ctx context.Context, categoryID int64) ([]models.Lesson, error) {
	var list []models.Lesson
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("sort_order asc, id asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get lessons by category: %w", err)
	}
	return list, nil
}

func (r *LessonRepo) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).Preload("Category").First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

func (r *LessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	if err := r.db.WithContext(ctx).Save(lesson).Error; err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

func (r *LessonRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Lesson{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
