package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
	"repurpose-backend/internal/services"
)

type ContentService interface {
	GenerateContent(ctx context.Context, userID, videoID uuid.UUID, contentType models.ContentType, regenerate bool) (*services.GenerateResult, error)
	GetContent(ctx context.Context, userID, videoID uuid.UUID, contentType models.ContentType) (*models.Content, error)
}

type ContentHandler struct {
	content ContentService
}

func NewContentHandler(content ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// GenerateContent godoc
// @Summary     Generate content
// @Description Returns the cached result when one exists, otherwise queues generation. Pass regenerate to force a new job.
// @Tags        content
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       type    path string true "Content type" Enums(shorts, blog, twitter, linkedin, instagram, thumbnail)
// @Param       videoId path string true "Video ID"
// @Param       request body models.GenerateContentRequest false "Options"
// @Success     200 {object} models.ContentQueuedResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /content/{type}/{videoId} [post]
func (h *ContentHandler) GenerateContent(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	contentType, ok := models.ParseContentType(c.Param("type"))
	if !ok {
		_ = c.Error(apperror.NotFound("Unknown content type"))
		return
	}
	videoID, err := pathUUID(c, "videoId", "Video not found")
	if err != nil {
		_ = c.Error(err)
		return
	}

	// The body is optional.
	var req models.GenerateContentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(apperror.Validation("Invalid request body"))
			return
		}
	}

	result, err := h.content.GenerateContent(c.Request.Context(), userID, videoID, contentType, req.Regenerate)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if result.Cached {
		c.JSON(http.StatusOK, models.ContentResponse{Success: true, Content: result.Content, Cached: true})
		return
	}
	c.JSON(http.StatusOK, models.ContentQueuedResponse{
		Success: true,
		Status:  models.StatusProcessing,
		Message: fmt.Sprintf("%s generation started", contentType),
	})
}

// GetContent godoc
// @Summary     Get generated content
// @Tags        content
// @Produce     json
// @Security    Bearer
// @Param       videoId     path string true "Video ID"
// @Param       contentType path string true "Content type"
// @Success     200 {object} models.ContentResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /content/{videoId}/{contentType} [get]
func (h *ContentHandler) GetContent(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	videoID, err := pathUUID(c, "videoId", "Video not found")
	if err != nil {
		_ = c.Error(err)
		return
	}
	contentType, ok := models.ParseContentType(c.Param("contentType"))
	if !ok {
		_ = c.Error(apperror.NotFound("Content not found"))
		return
	}

	content, err := h.content.GetContent(c.Request.Context(), userID, videoID, contentType)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.ContentResponse{Success: true, Content: content})
}
