package models

import "time"

// LessonProgress represents the playback progress of a user on a lesson.
// LastPosition, TotalDuration and Progress are monotonically non-decreasing
// across updates for a given (user, lesson) pair; CompletedAt is set once on
// the first transition to completed and never cleared.
type LessonProgress struct {
	UserID        string     `gorm:"type:uuid;not null;primaryKey;index:idx_user_lesson" json:"user_id"`
	LessonID      int64      `gorm:"not null;primaryKey;index:idx_user_lesson" json:"lesson_id"`
	LastPosition  int        `gorm:"default:0" json:"last_position"`  // seconds
	TotalDuration int        `gorm:"default:0" json:"total_duration"` // seconds
	Progress      float64    `gorm:"default:0" json:"progress"`       // ratio in [0,1]
	Completed     bool       `gorm:"default:false" json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	UpdatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName overrides the table name used by LessonProgress to `lesson_progress`
func (LessonProgress) TableName() string {
	return "lesson_progress"
}
