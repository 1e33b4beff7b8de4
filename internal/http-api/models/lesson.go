package models

import "time"

// Lesson is a single training video inside a category (aim drills, crosshair
// placement, agent guides, ...).
type Lesson struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	CategoryID      int64      `json:"category_id" gorm:"not null;index"`
	Slug            *string    `json:"slug,omitempty" gorm:"uniqueIndex;size:200"`
	Title           string     `json:"title" gorm:"not null"`
	Description     *string    `json:"description,omitempty"`
	VideoURL        string     `json:"video_url" gorm:"not null"`
	DurationSeconds int        `json:"duration_seconds" gorm:"default:0"`
	SortOrder       int        `json:"sort_order" gorm:"default:0"`
	CreatedAt       *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	// association
	Category *LessonCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Lesson) TableName() string {
	return "lessons"
}
