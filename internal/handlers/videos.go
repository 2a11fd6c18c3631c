package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
)

type VideoService interface {
	CreateVideo(ctx context.Context, userID uuid.UUID, youtubeURL string) (*models.Video, error)
	ListVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error)
	GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error)
	DeleteVideo(ctx context.Context, videoID, userID uuid.UUID) error
}

type VideosHandler struct {
	videos VideoService
}

func NewVideosHandler(videos VideoService) *VideosHandler {
	return &VideosHandler{videos: videos}
}

// CreateVideo godoc
// @Summary     Submit a YouTube video
// @Description Validates the URL and queues transcription. Requires at least one credit.
// @Tags        videos
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateVideoRequest true "YouTube URL"
// @Success     201 {object} models.CreateVideoResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     402 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Router      /videos [post]
func (h *VideosHandler) CreateVideo(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req models.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Validation("youtube_url is required"))
		return
	}

	video, err := h.videos.CreateVideo(c.Request.Context(), userID, req.YoutubeURL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateVideoResponse{
		Success: true,
		VideoID: video.ID.String(),
		Status:  models.StatusPending,
		Message: "Video queued for processing",
	})
}

// ListVideos godoc
// @Summary     List videos
// @Description Returns the caller's videos, newest first
// @Tags        videos
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.VideoListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /videos [get]
func (h *VideosHandler) ListVideos(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	videos, err := h.videos.ListVideos(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.VideoListResponse{Success: true, Videos: videos})
}

// GetVideo godoc
// @Summary     Get a video
// @Tags        videos
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Video ID"
// @Success     200 {object} models.VideoResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /videos/{id} [get]
func (h *VideosHandler) GetVideo(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	videoID, err := pathUUID(c, "id", "Video not found")
	if err != nil {
		_ = c.Error(err)
		return
	}

	video, err := h.videos.GetVideo(c.Request.Context(), videoID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.VideoResponse{Success: true, Video: video})
}

// DeleteVideo godoc
// @Summary     Delete a video
// @Description Removes the video, its generated content and stored thumbnails
// @Tags        videos
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Video ID"
// @Success     200 {object} models.MessageResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /videos/{id} [delete]
func (h *VideosHandler) DeleteVideo(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	videoID, err := pathUUID(c, "id", "Video not found")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.videos.DeleteVideo(c.Request.Context(), videoID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Video deleted"})
}
