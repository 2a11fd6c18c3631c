package generator

import (
	"context"
	"fmt"
	"log/slog"

	"repurpose-backend/internal/ai"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
)

const temperature = 0.7

type Chatter interface {
	Chat(ctx context.Context, req ai.ChatRequest) (string, error)
}

// Generator turns a transcript into one typed payload per text content type.
type Generator struct {
	chat    Chatter
	prompts *Prompts
	logger  *slog.Logger
}

func New(chat Chatter, prompts *Prompts, logger *slog.Logger) *Generator {
	return &Generator{chat: chat, prompts: prompts, logger: logger}
}

func (g *Generator) Shorts(ctx context.Context, transcript, title string) (models.ShortsData, error) {
	out, err := generate(ctx, g, models.ContentShorts, g.prompts.Shorts, transcript, title, models.ShortsData{})
	if out.Shorts == nil {
		out.Shorts = []models.Short{}
	}
	return out, err
}

func (g *Generator) Blog(ctx context.Context, transcript, title string) (models.BlogData, error) {
	def := models.BlogData{Title: title, EstimatedReadTime: 5}
	out, err := generate(ctx, g, models.ContentBlog, g.prompts.Blog, transcript, title, def)
	if out.SEOKeywords == nil {
		out.SEOKeywords = []string{}
	}
	return out, err
}

func (g *Generator) Twitter(ctx context.Context, transcript, title string) (models.TwitterData, error) {
	out, err := generate(ctx, g, models.ContentTwitter, g.prompts.Twitter, transcript, title, models.TwitterData{})
	if out.Tweets == nil {
		out.Tweets = []string{}
	}
	if out.Hashtags == nil {
		out.Hashtags = []string{}
	}
	if out.TotalTweets == 0 {
		out.TotalTweets = len(out.Tweets)
	}
	return out, err
}

func (g *Generator) LinkedIn(ctx context.Context, transcript, title string) (models.LinkedInData, error) {
	out, err := generate(ctx, g, models.ContentLinkedIn, g.prompts.LinkedIn, transcript, title, models.LinkedInData{})
	if out.Slides == nil {
		out.Slides = []models.Slide{}
	}
	if out.TotalSlides == 0 {
		out.TotalSlides = len(out.Slides)
	}
	return out, err
}

func (g *Generator) Instagram(ctx context.Context, transcript, title string) (models.InstagramData, error) {
	out, err := generate(ctx, g, models.ContentInstagram, g.prompts.Instagram, transcript, title, models.InstagramData{})
	if out.Captions == nil {
		out.Captions = []models.Caption{}
	}
	return out, err
}

// generate runs one chat call and parses the reply. A reply without usable
// JSON is not an error: the caller gets def.
func generate[T any](ctx context.Context, g *Generator, contentType models.ContentType, tmpl PromptTemplate, transcript, title string, def T) (T, error) {
	log := g.logger.With("content_type", contentType)
	log.Info("generating content")

	user, err := tmpl.Render(PromptParams{Title: title, Transcript: transcript})
	if err != nil {
		return def, apperror.ContentGeneration("Failed to build prompt", fmt.Errorf("%s: %w", contentType, err))
	}

	raw, err := g.chat.Chat(ctx, ai.ChatRequest{
		System:      tmpl.System,
		User:        user,
		MaxTokens:   tmpl.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return def, err
	}

	parsed := ParseOrDefault(raw, def)
	if parsed.Fallback {
		log.Warn("failed to parse JSON response, using fallback", "error", parsed.Err)
	}
	return parsed.Value, nil
}
