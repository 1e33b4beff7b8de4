package dto

import (
	"time"

	"valoracademy/internal/http-api/models"
)

// DTOs for progress-related operations in HTTP API

type LessonURI struct {
	LessonID int64 `uri:"lesson_id" binding:"required,gt=0"`
}

// ReportProgressRequest is the raw client playback report. Values are
// pointers so "0" and "absent" can be told apart at the boundary; range and
// finiteness checks happen in the normalizer.
type ReportProgressRequest struct {
	LastPosition  *float64 `json:"lastPosition" binding:"required"`
	TotalDuration *float64 `json:"totalDuration" binding:"required"`
}

type ProgressResponse struct {
	UserID        string     `json:"user_id"`
	LessonID      int64      `json:"lesson_id"`
	LastPosition  int        `json:"last_position"`
	TotalDuration int        `json:"total_duration"`
	Progress      float64    `json:"progress"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func ProgressFromModel(progress models.LessonProgress) ProgressResponse {
	return ProgressResponse{
		UserID:        progress.UserID,
		LessonID:      progress.LessonID,
		LastPosition:  progress.LastPosition,
		TotalDuration: progress.TotalDuration,
		Progress:      progress.Progress,
		Completed:     progress.Completed,
		CompletedAt:   progress.CompletedAt,
		UpdatedAt:     progress.UpdatedAt,
	}
}
