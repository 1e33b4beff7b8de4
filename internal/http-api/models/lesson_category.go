package models

import "time"

// LessonCategory groups lessons (Aim Training, Game Sense, Agent Mastery...).
// At most one category carries is_default = true; it is the category the
// frontend opens first. The exclusivity is enforced in the repository inside
// a transaction, not at the schema level.
type LessonCategory struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"uniqueIndex;not null"`
	Slug        *string    `json:"slug,omitempty" gorm:"uniqueIndex;size:200"`
	Description *string    `json:"description,omitempty"`
	IsDefault   bool       `json:"is_default" gorm:"default:false"`
	SortOrder   int        `json:"sort_order" gorm:"default:0"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

func (LessonCategory) TableName() string {
	return "lesson_categories"
}
