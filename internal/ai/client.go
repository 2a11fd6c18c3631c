package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"repurpose-backend/internal/apperror"
)

type Config struct {
	APIKey             string
	BaseURL            string
	ChatModel          string
	ImageModel         string
	TranscriptionModel string
	Language           string
	HTTPClient         *http.Client
}

// Client wraps the hosted AI API: chat completions, speech-to-text and image generation.
type Client struct {
	api                *openai.Client
	chatModel          string
	imageModel         string
	transcriptionModel string
	language           string
}

func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}

	c := &Client{
		api:                openai.NewClientWithConfig(apiCfg),
		chatModel:          cfg.ChatModel,
		imageModel:         cfg.ImageModel,
		transcriptionModel: cfg.TranscriptionModel,
		language:           cfg.Language,
	}
	if c.chatModel == "" {
		c.chatModel = openai.GPT4oMini
	}
	if c.imageModel == "" {
		c.imageModel = openai.CreateImageModelDallE3
	}
	if c.transcriptionModel == "" {
		c.transcriptionModel = openai.Whisper1
	}
	return c
}

type ChatRequest struct {
	System    string
	User      string
	MaxTokens int
	// Temperature 0 leaves the provider default in place.
	Temperature float32
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", apperror.ContentGeneration(describe(err, "Content generation failed"), err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe sends a local audio file for speech-to-text and returns plain text.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: audioPath,
		Language: c.language,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", apperror.Transcription(describe(err, "Transcription failed"), err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// GenerateImage renders one 1792x1024 image and returns its temporary URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1792x1024,
		Quality:        openai.CreateImageQualityStandard,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", apperror.ContentGeneration(describe(err, "Image generation failed"), err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", apperror.ContentGeneration("Image generation returned no image", nil)
	}
	return resp.Data[0].URL, nil
}

func describe(err error, fallback string) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fallback + ": rate limit exceeded, please try again later"
		case http.StatusUnauthorized:
			return fallback + ": invalid API credentials"
		}
		if apiErr.Message != "" {
			return fmt.Sprintf("%s: %s", fallback, apiErr.Message)
		}
	}
	return fallback
}
