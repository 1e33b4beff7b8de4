package dto

import "valoracademy/internal/http-api/models"

// DTOs for the lesson catalog.

type CreateLessonRequest struct {
	CategoryID      int64   `json:"category_id" binding:"required,gt=0"`
	Title           string  `json:"title" binding:"required,max=200"`
	Slug            *string `json:"slug,omitempty"`
	Description     *string `json:"description,omitempty"`
	VideoURL        string  `json:"video_url" binding:"required,url"`
	DurationSeconds int     `json:"duration_seconds" binding:"min=0"`
	SortOrder       int     `json:"sort_order"`
}

type UpdateLessonRequest struct {
	CategoryID      int64   `json:"category_id"`
	Title           string  `json:"title" binding:"required,max=200"`
	Description     *string `json:"description,omitempty"`
	VideoURL        string  `json:"video_url" binding:"required,url"`
	DurationSeconds int     `json:"duration_seconds" binding:"min=0"`
	SortOrder       int     `json:"sort_order"`
}

type LessonResponse struct {
	ID              int64   `json:"id"`
	CategoryID      int64   `json:"category_id"`
	Slug            *string `json:"slug,omitempty"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	VideoURL        string  `json:"video_url"`
	DurationSeconds int     `json:"duration_seconds"`
	SortOrder       int     `json:"sort_order"`
}

func LessonFromModel(lesson models.Lesson) LessonResponse {
	return LessonResponse{
		ID:              lesson.ID,
		CategoryID:      lesson.CategoryID,
		Slug:            lesson.Slug,
		Title:           lesson.Title,
		Description:     lesson.Description,
		VideoURL:        lesson.VideoURL,
		DurationSeconds: lesson.DurationSeconds,
		SortOrder:       lesson.SortOrder,
	}
}

type PaginatedLessonsResponse struct {
	Data     []LessonResponse `json:"data"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Category DTOs

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	SortOrder   int     `json:"sort_order"`
}

type CategoryResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	IsDefault   bool    `json:"is_default"`
	SortOrder   int     `json:"sort_order"`
}

func CategoryFromModel(category models.LessonCategory) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		IsDefault:   category.IsDefault,
		SortOrder:   category.SortOrder,
	}
}
