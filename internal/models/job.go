package models

import "github.com/google/uuid"

type TranscriptionJob struct {
	VideoID    uuid.UUID `json:"video_id"`
	YoutubeURL string    `json:"youtube_url"`
	UserID     uuid.UUID `json:"user_id"`
}

type ContentJob struct {
	VideoID    uuid.UUID `json:"video_id"`
	UserID     uuid.UUID `json:"user_id"`
	Transcript string    `json:"transcript"`
	VideoTitle string    `json:"video_title"`
}
