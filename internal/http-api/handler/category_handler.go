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

type CategoryHandler struct {
	categoryService service.CategoryService
	lessonService   service.LessonService
}

func NewCategoryHandler(categoryService service.CategoryService, lessonService service.LessonService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, lessonService: lessonService}
}

func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id/lessons", h.GetLessonsByCategory)
	rg.POST("", middleware.RequireRole("admin"), h.Create)
	rg.PUT("/:id", middleware.RequireRole("admin"), h.Update)
	rg.DELETE("/:id", middleware.RequireRole("admin"), h.Delete)
	rg.POST("/:id/default", middleware.RequireRole("admin"), h.SetDefault)
}

func (h *CategoryHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.categoryService.GetAll(ctx)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	resp := make([]dto.CategoryResponse, 0, len(list))
	for _, category := range list {
		resp = append(resp, dto.CategoryFromModel(category))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) GetLessonsByCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	lessons, err := h.lessonService.GetByCategory(ctx, id)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	resp := make([]dto.LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		resp = append(resp, dto.LessonFromModel(lesson))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	category := models.LessonCategory{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.categoryService.Create(ctx, &category); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CategoryFromModel(category))
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	category := models.LessonCategory{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.categoryService.Update(ctx, id, &category); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category updated"})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.categoryService.Delete(ctx, id); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

func (h *CategoryHandler) SetDefault(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.categoryService.SetDefault(ctx, id); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "default category updated"})
}
