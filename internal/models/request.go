package models

type CreateVideoRequest struct {
	YoutubeURL string `json:"youtube_url" binding:"required" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
}

type GenerateContentRequest struct {
	// Regenerate forces a new job even when a completed row exists.
	Regenerate bool `json:"regenerate" example:"false"`
}
