package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"valoracademy/internal/http-api/dto"
	"valoracademy/internal/http-api/middleware"
	"valoracademy/internal/http-api/models"
	"valoracademy/internal/http-api/service"
	"valoracademy/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type LessonHandler struct {
	lessonService service.LessonService
}

func NewLessonHandler(lessonService service.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

// RegisterRoutes registers lesson catalog routes. Mutations are admin-only.
func (h *LessonHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:lesson_id", h.Get)
	rg.POST("", middleware.RequireRole("admin"), h.Create)
	rg.PUT("/:lesson_id", middleware.RequireRole("admin"), h.Update)
	rg.DELETE("/:lesson_id", middleware.RequireRole("admin"), h.Delete)
}

func (h *LessonHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	lessons, total, err := h.lessonService.GetAll(ctx, page, pageSize)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	resp := make([]dto.LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		resp = append(resp, dto.LessonFromModel(lesson))
	}
	c.JSON(http.StatusOK, dto.PaginatedLessonsResponse{
		Data:     resp,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *LessonHandler) Get(c *gin.Context) {
	var uri dto.LessonURI
	if err := c.ShouldBindUri(&uri); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	lesson, err := h.lessonService.GetByID(ctx, uri.LessonID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LessonFromModel(*lesson))
}

func (h *LessonHandler) Create(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	lesson := models.Lesson{
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Slug:            req.Slug,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		DurationSeconds: req.DurationSeconds,
		SortOrder:       req.SortOrder,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.lessonService.Create(ctx, &lesson); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.LessonFromModel(lesson))
}

func (h *LessonHandler) Update(c *gin.Context) {
	var uri dto.LessonURI
	if err := c.ShouldBindUri(&uri); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	lesson := models.Lesson{
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		DurationSeconds: req.DurationSeconds,
		SortOrder:       req.SortOrder,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.lessonService.Update(ctx, uri.LessonID, &lesson); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lesson updated"})
}

func (h *LessonHandler) Delete(c *gin.Context) {
	var uri dto.LessonURI
	if err := c.ShouldBindUri(&uri); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.lessonService.Delete(ctx, uri.LessonID); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lesson deleted"})
}
