package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
)

type ContentStore interface {
	GetContent(ctx context.Context, videoID uuid.UUID, contentType models.ContentType) (*models.Content, error)
}

type VideoGetter interface {
	GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error)
}

// GenerateResult is either a cached completed row or an acknowledgement that
// a job was queued.
type GenerateResult struct {
	Content *models.Content
	Cached  bool
	Status  models.Status
}

type ContentService struct {
	videos  VideoGetter
	content ContentStore
	credits CreditReader
	queue   Enqueuer
	logger  *slog.Logger
}

func NewContentService(videos VideoGetter, content ContentStore, credits CreditReader, q Enqueuer, logger *slog.Logger) *ContentService {
	return &ContentService{
		videos:  videos,
		content: content,
		credits: credits,
		queue:   q,
		logger:  logger,
	}
}

func (s *ContentService) GenerateContent(ctx context.Context, userID, videoID uuid.UUID, contentType models.ContentType, regenerate bool) (*GenerateResult, error) {
	video, err := s.videos.GetVideo(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}
	if !video.TranscriptReady() {
		return nil, apperror.Validation("Video transcript not ready")
	}

	if !regenerate {
		existing, err := s.content.GetContent(ctx, videoID, contentType)
		switch {
		case err == nil && existing.Status == models.StatusCompleted:
			return &GenerateResult{Content: existing, Cached: true, Status: models.StatusCompleted}, nil
		case err != nil && !errors.Is(err, apperror.ErrNotFound):
			return nil, err
		}
	}

	if err := requireCredit(ctx, s.credits, userID); err != nil {
		return nil, err
	}

	handle, err := s.queue.Enqueue(ctx, string(contentType), models.ContentJob{
		VideoID:    videoID,
		UserID:     userID,
		Transcript: *video.Transcript,
		VideoTitle: video.DisplayTitle(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to queue %s generation: %w", contentType, err)
	}

	s.logger.Info("content generation queued",
		"content_type", contentType,
		"video_id", videoID,
		"user_id", userID,
		"job_id", handle.ID,
		"regenerate", regenerate,
	)
	return &GenerateResult{Status: models.StatusProcessing}, nil
}

// GetContent returns the row for one content type of a video the user owns.
func (s *ContentService) GetContent(ctx context.Context, userID, videoID uuid.UUID, contentType models.ContentType) (*models.Content, error) {
	if _, err := s.videos.GetVideo(ctx, videoID, userID); err != nil {
		return nil, err
	}
	return s.content.GetContent(ctx, videoID, contentType)
}
