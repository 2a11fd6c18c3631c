package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
	"repurpose-backend/internal/queue"
	"repurpose-backend/internal/ytdlp"
)

const (
	failureWriteTimeout = 10 * time.Second
	queueFailureMessage = "Failed to queue video for processing"
)

type VideoStore interface {
	CreateVideo(ctx context.Context, userID uuid.UUID, youtubeURL, sourceID string) (*models.Video, error)
	GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error)
	ListVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error)
	DeleteVideo(ctx context.Context, videoID, userID uuid.UUID) error
	UpdateVideoTranscript(ctx context.Context, videoID uuid.UUID, transcript string, status models.Status, errMsg string) error
}

type CreditReader interface {
	GetCredits(ctx context.Context, userID uuid.UUID) (int, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, queueName string, payload any) (*queue.JobHandle, error)
}

type FileRemover interface {
	DeleteVideoFiles(videoID uuid.UUID) error
}

type VideoService struct {
	videos  VideoStore
	credits CreditReader
	queue   Enqueuer
	files   FileRemover
	logger  *slog.Logger
}

func NewVideoService(videos VideoStore, credits CreditReader, q Enqueuer, files FileRemover, logger *slog.Logger) *VideoService {
	return &VideoService{
		videos:  videos,
		credits: credits,
		queue:   q,
		files:   files,
		logger:  logger,
	}
}

// CreateVideo checks the balance and URL, stores a pending video and queues
// its transcription. No credit is spent here.
func (s *VideoService) CreateVideo(ctx context.Context, userID uuid.UUID, youtubeURL string) (*models.Video, error) {
	if err := requireCredit(ctx, s.credits, userID); err != nil {
		return nil, err
	}

	if !ytdlp.ValidateURL(youtubeURL) {
		return nil, apperror.Validation("Invalid YouTube URL")
	}
	sourceID, ok := ytdlp.ExtractVideoID(youtubeURL)
	if !ok {
		return nil, apperror.Validation("Invalid YouTube URL")
	}

	video, err := s.videos.CreateVideo(ctx, userID, youtubeURL, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	handle, err := s.queue.Enqueue(ctx, queue.Transcription, models.TranscriptionJob{
		VideoID:    video.ID,
		YoutubeURL: youtubeURL,
		UserID:     userID,
	})
	if err != nil {
		// Without a job the row would sit in pending forever.
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
		defer cancel()
		if uerr := s.videos.UpdateVideoTranscript(storeCtx, video.ID, "", models.StatusFailed, queueFailureMessage); uerr != nil {
			s.logger.Error("failed to mark unqueued video failed", "video_id", video.ID, "error", uerr)
		}
		return nil, fmt.Errorf("failed to queue transcription: %w", err)
	}

	s.logger.Info("video created", "video_id", video.ID, "user_id", userID, "job_id", handle.ID)
	return video, nil
}

func (s *VideoService) ListVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error) {
	return s.videos.ListVideos(ctx, userID)
}

func (s *VideoService) GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error) {
	return s.videos.GetVideo(ctx, videoID, userID)
}

// DeleteVideo removes the row (content cascades) and then the stored
// thumbnails. A storage failure is logged, not returned.
func (s *VideoService) DeleteVideo(ctx context.Context, videoID, userID uuid.UUID) error {
	if err := s.videos.DeleteVideo(ctx, videoID, userID); err != nil {
		return err
	}
	if err := s.files.DeleteVideoFiles(videoID); err != nil {
		s.logger.Warn("failed to delete video files", "video_id", videoID, "error", err)
	}
	return nil
}

func requireCredit(ctx context.Context, credits CreditReader, userID uuid.UUID) error {
	balance, err := credits.GetCredits(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read credits: %w", err)
	}
	if balance < 1 {
		return apperror.InsufficientCredits()
	}
	return nil
}
