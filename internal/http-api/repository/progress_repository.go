package repository

import (
	"context"
	"time"

	"valoracademy/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type progressRepository struct {
	db *gorm.DB
}

type ProgressRepository interface {
	GetAllProgress(ctx context.Context, userID string) ([]models.LessonProgress, error)
	GetProgressByLessonID(ctx context.Context, userID string, lessonID int64) (*models.LessonProgress, error)
	// UpsertProgress persists a normalized record and writes the stored row
	// back into progress, so after the merge the caller holds what the
	// database holds.
	UpsertProgress(ctx context.Context, progress *models.LessonProgress) error
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetAllProgress(ctx context.Context, userID string) ([]models.LessonProgress, error) {
	var list []models.LessonProgress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *progressRepository) GetProgressByLessonID(ctx context.Context, userID string, lessonID int64) (*models.LessonProgress, error) {
	var progress models.LessonProgress
	if err := r.db.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// UpsertProgress persists a normalized progress record. The merge on conflict
// uses GREATEST / OR / COALESCE so position, duration, progress and the
// completion flag never regress even when two reports for the same key race
// each other. RETURNING fills the struct with the merged row, so the loser of
// such a race still gets the stored maximum back.
func (r *progressRepository) UpsertProgress(ctx context.Context, progress *models.LessonProgress) error {
	progress.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.Returning{}, clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_position":  gorm.Expr("GREATEST(lesson_progress.last_position, EXCLUDED.last_position)"),
			"total_duration": gorm.Expr("GREATEST(lesson_progress.total_duration, EXCLUDED.total_duration)"),
			"progress":       gorm.Expr("GREATEST(lesson_progress.progress, EXCLUDED.progress)"),
			"completed":      gorm.Expr("lesson_progress.completed OR EXCLUDED.completed"),
			"completed_at":   gorm.Expr("COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at)"),
			"updated_at":     gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(progress).Error
}
