package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
	"repurpose-backend/internal/ytdlp"
)

const failureWriteTimeout = 10 * time.Second

type VideoStore interface {
	UpdateVideoStatus(ctx context.Context, videoID uuid.UUID, status models.Status) error
	UpdateVideoMetadata(ctx context.Context, videoID uuid.UUID, title string, duration int) error
	UpdateVideoTranscript(ctx context.Context, videoID uuid.UUID, transcript string, status models.Status, errMsg string) error
}

type MediaFetcher interface {
	GetVideoInfo(ctx context.Context, url string) (*ytdlp.VideoInfo, error)
	DownloadAudio(ctx context.Context, url, dest string) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type TranscriptionWorker struct {
	videos        VideoStore
	media         MediaFetcher
	transcriber   Transcriber
	tempDir       string
	maxAudioBytes int64
	logger        *slog.Logger
}

func NewTranscriptionWorker(videos VideoStore, media MediaFetcher, transcriber Transcriber, tempDir string, maxAudioBytes int64, logger *slog.Logger) *TranscriptionWorker {
	return &TranscriptionWorker{
		videos:        videos,
		media:         media,
		transcriber:   transcriber,
		tempDir:       tempDir,
		maxAudioBytes: maxAudioBytes,
		logger:        logger,
	}
}

// AudioPath is the per-job scratch file, unique per video row.
func (w *TranscriptionWorker) AudioPath(sourceID string, videoID uuid.UUID) string {
	return filepath.Join(w.tempDir, fmt.Sprintf("%s-%s.mp3", sourceID, videoID))
}

// Process moves a video pending -> processing -> completed|failed. On failure
// the error is returned so the queue can retry.
func (w *TranscriptionWorker) Process(ctx context.Context, job models.TranscriptionJob) error {
	log := w.logger.With("video_id", job.VideoID, "user_id", job.UserID)
	log.Info("starting transcription")

	if err := w.videos.UpdateVideoStatus(ctx, job.VideoID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to mark video processing: %w", err)
	}

	transcript, err := w.transcribe(ctx, log, job)
	if err != nil {
		log.Error("transcription failed", "error", err)

		storeCtx, cancel := detached(ctx)
		defer cancel()
		msg := apperror.Message(err, err.Error())
		if uerr := w.videos.UpdateVideoTranscript(storeCtx, job.VideoID, "", models.StatusFailed, msg); uerr != nil {
			log.Error("failed to record transcription failure", "error", uerr)
		}
		return err
	}

	if err := w.videos.UpdateVideoTranscript(ctx, job.VideoID, transcript, models.StatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to store transcript: %w", err)
	}

	log.Info("transcription completed", "chars", len(transcript))
	return nil
}

func (w *TranscriptionWorker) transcribe(ctx context.Context, log *slog.Logger, job models.TranscriptionJob) (string, error) {
	info, err := w.media.GetVideoInfo(ctx, job.YoutubeURL)
	if err != nil {
		return "", err
	}
	if err := w.videos.UpdateVideoMetadata(ctx, job.VideoID, info.Title, info.Duration); err != nil {
		log.Warn("failed to store video metadata", "error", err)
	}

	sourceID := info.ID
	if sourceID == "" {
		sourceID, _ = ytdlp.ExtractVideoID(job.YoutubeURL)
	}
	audioPath := w.AudioPath(sourceID, job.VideoID)
	defer w.cleanup(log, audioPath)

	if err := w.media.DownloadAudio(ctx, job.YoutubeURL, audioPath); err != nil {
		return "", err
	}

	stat, err := os.Stat(audioPath)
	if err != nil {
		return "", apperror.Transcription("Audio file not found", err)
	}
	if stat.Size() > w.maxAudioBytes {
		return "", apperror.Transcription(
			fmt.Sprintf("Audio file too large (max %dMB)", w.maxAudioBytes/(1024*1024)), nil)
	}

	transcript, err := w.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", err
	}
	if transcript == "" {
		return "", apperror.Transcription("Transcription returned no text", nil)
	}
	return transcript, nil
}

func (w *TranscriptionWorker) cleanup(log *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove temp audio", "path", path, "error", err)
	}
}

// detached keeps request values but drops the parent's cancellation, for
// writes that must happen after a job timed out.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
}
