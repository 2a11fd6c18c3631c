package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is shared by videos (transcript_status) and content rows.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

type Video struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	YoutubeURL       string    `json:"youtube_url"`
	VideoID          string    `json:"video_id"`
	Title            *string   `json:"title"`
	Duration         *int      `json:"duration"`
	Transcript       *string   `json:"transcript"`
	TranscriptStatus Status    `json:"transcript_status"`
	ErrorMessage     *string   `json:"error_message"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TranscriptReady reports whether content can be generated from this video.
func (v *Video) TranscriptReady() bool {
	return v.TranscriptStatus == StatusCompleted && v.Transcript != nil && *v.Transcript != ""
}

// DisplayTitle falls back to a generic label while metadata is unknown.
func (v *Video) DisplayTitle() string {
	if v.Title == nil || *v.Title == "" {
		return "Video"
	}
	return *v.Title
}

type Profile struct {
	ID               uuid.UUID `json:"id"`
	CreditsRemaining int       `json:"credits_remaining"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
