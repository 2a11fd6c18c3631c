package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"repurpose-backend/internal/ai"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
)

const (
	maxThumbnailBytes = 20 << 20
	// The image API throttles bursts; two styles render at a time.
	maxConcurrentImages = 2
)

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type ImageFetcher interface {
	Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, error)
}

type ThumbnailUploader interface {
	UploadThumbnail(videoID uuid.UUID, style string, data []byte) (string, error)
}

type ThumbnailGenerator struct {
	chat     Chatter
	images   ImageGenerator
	fetcher  ImageFetcher
	uploader ThumbnailUploader
	prompts  *Prompts
	logger   *slog.Logger
}

func NewThumbnailGenerator(chat Chatter, images ImageGenerator, fetcher ImageFetcher, uploader ThumbnailUploader, prompts *Prompts, logger *slog.Logger) *ThumbnailGenerator {
	return &ThumbnailGenerator{
		chat:     chat,
		images:   images,
		fetcher:  fetcher,
		uploader: uploader,
		prompts:  prompts,
		logger:   logger,
	}
}

// Generate renders one image per style. Styles fail independently; the set
// fails only when no style produced an image.
func (t *ThumbnailGenerator) Generate(ctx context.Context, job models.ContentJob) (models.ThumbnailData, error) {
	log := t.logger.With("content_type", models.ContentThumbnail, "video_id", job.VideoID)
	log.Info("generating thumbnails")

	topic := t.topic(ctx, job)

	styles := t.prompts.ThumbnailStyles
	results := make([]*models.Thumbnail, len(styles))

	// No shared context: one style failing must not cancel the others.
	var g errgroup.Group
	g.SetLimit(maxConcurrentImages)
	for i, style := range styles {
		g.Go(func() error {
			thumb, err := t.render(ctx, job.VideoID, topic, style)
			if err != nil {
				log.Error("failed to generate thumbnail", "style", style.Name, "error", err)
				return fmt.Errorf("%s: %w", style.Name, err)
			}
			results[i] = thumb
			return nil
		})
	}
	firstErr := g.Wait()

	data := models.ThumbnailData{Thumbnails: []models.Thumbnail{}}
	for _, thumb := range results {
		if thumb != nil {
			data.Thumbnails = append(data.Thumbnails, *thumb)
		}
	}
	if len(data.Thumbnails) == 0 {
		return data, apperror.ContentGeneration("Failed to generate any thumbnails", firstErr)
	}
	return data, nil
}

// topic asks for a short theme; on any failure the video title stands in.
func (t *ThumbnailGenerator) topic(ctx context.Context, job models.ContentJob) string {
	tmpl := t.prompts.ThumbnailTopic
	user, err := tmpl.Render(PromptParams{Title: job.VideoTitle, Transcript: job.Transcript})
	if err != nil {
		return job.VideoTitle
	}

	topic, err := t.chat.Chat(ctx, ai.ChatRequest{
		System:    tmpl.System,
		User:      user,
		MaxTokens: tmpl.MaxTokens,
	})
	topic = strings.TrimSpace(topic)
	if err != nil || topic == "" {
		if err != nil {
			t.logger.Warn("topic extraction failed, using title", "error", err)
		}
		return job.VideoTitle
	}
	return topic
}

func (t *ThumbnailGenerator) render(ctx context.Context, videoID uuid.UUID, topic string, style ThumbnailStyle) (*models.Thumbnail, error) {
	prompt, err := render(t.prompts.ThumbnailImage.User, PromptParams{Topic: topic, Style: style.Description})
	if err != nil {
		return nil, err
	}

	imageURL, err := t.images.GenerateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &models.Thumbnail{
		URL:    t.store(ctx, videoID, style.Name, imageURL),
		Prompt: prompt,
		Style:  style.Name,
	}, nil
}

// store copies the provider's short-lived image into our bucket, keeping the
// provider URL if the copy fails.
func (t *ThumbnailGenerator) store(ctx context.Context, videoID uuid.UUID, style, imageURL string) string {
	data, err := t.fetcher.Fetch(ctx, imageURL, maxThumbnailBytes)
	if err != nil {
		t.logger.Error("failed to fetch thumbnail", "style", style, "error", err)
		return imageURL
	}

	publicURL, err := t.uploader.UploadThumbnail(videoID, style, data)
	if err != nil {
		t.logger.Error("failed to upload thumbnail", "style", style, "error", err)
		return imageURL
	}
	return publicURL
}
