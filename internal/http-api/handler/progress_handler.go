package handler

import (
	"context"
	"net/http"
	"time"

	"valoracademy/internal/http-api/dto"
	"valoracademy/internal/http-api/middleware"
	"valoracademy/internal/http-api/service"
	"valoracademy/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// RegisterRoutes registers the progress-related routes.
// The lesson-scoped ones hang off /api/lessons/:lesson_id/progress.
func (h *ProgressHandler) RegisterRoutes(lessons, progress *gin.RouterGroup) {
	lessons.GET("/:lesson_id/progress", h.GetProgress)
	lessons.PUT("/:lesson_id/progress", h.ReportProgress)
	progress.GET("", h.GetAllProgress)
}

func (h *ProgressHandler) ReportProgress(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.Unauthorized("user not authenticated"))
		return
	}

	var uri dto.LessonURI
	if err := c.ShouldBindUri(&uri); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	var req dto.ReportProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.progressService.Report(ctx, userID, uri.LessonID, *req.LastPosition, *req.TotalDuration)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ProgressFromModel(*record)})
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.Unauthorized("user not authenticated"))
		return
	}

	var uri dto.LessonURI
	if err := c.ShouldBindUri(&uri); err != nil {
		apperrors.HandleBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.progressService.Get(ctx, userID, uri.LessonID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	if record == nil {
		// no report yet for this lesson
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ProgressFromModel(*record)})
}

func (h *ProgressHandler) GetAllProgress(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		apperrors.HandleError(c, apperrors.Unauthorized("user not authenticated"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.progressService.GetByUser(ctx, userID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	resp := make([]dto.ProgressResponse, 0, len(list))
	for _, record := range list {
		resp = append(resp, dto.ProgressFromModel(record))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
