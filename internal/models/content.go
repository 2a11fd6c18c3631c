package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentShorts    ContentType = "shorts"
	ContentBlog      ContentType = "blog"
	ContentTwitter   ContentType = "twitter"
	ContentLinkedIn  ContentType = "linkedin"
	ContentInstagram ContentType = "instagram"
	ContentThumbnail ContentType = "thumbnail"
)

var ContentTypes = []ContentType{
	ContentShorts,
	ContentBlog,
	ContentTwitter,
	ContentLinkedIn,
	ContentInstagram,
	ContentThumbnail,
}

func ParseContentType(s string) (ContentType, bool) {
	for _, ct := range ContentTypes {
		if string(ct) == s {
			return ct, true
		}
	}
	return "", false
}

type Content struct {
	ID           uuid.UUID       `json:"id"`
	VideoID      uuid.UUID       `json:"video_id"`
	ContentType  ContentType     `json:"content_type"`
	ContentData  json.RawMessage `json:"content_data"`
	Status       Status          `json:"status"`
	ErrorMessage *string         `json:"error_message"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Short struct {
	Title    string `json:"title"`
	Script   string `json:"script"`
	Duration string `json:"duration"`
	Hook     string `json:"hook"`
	CTA      string `json:"cta"`
}

type ShortsData struct {
	Shorts []Short `json:"shorts"`
}

type BlogData struct {
	Title             string   `json:"title"`
	MetaDescription   string   `json:"meta_description"`
	Content           string   `json:"content"`
	SEOKeywords       []string `json:"seo_keywords"`
	EstimatedReadTime int      `json:"estimated_read_time"`
}

type TwitterData struct {
	Tweets      []string `json:"tweets"`
	TotalTweets int      `json:"total_tweets"`
	Hashtags    []string `json:"hashtags"`
}

type Slide struct {
	SlideNumber int    `json:"slide_number"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	DesignNotes string `json:"design_notes"`
}

type LinkedInData struct {
	Slides      []Slide `json:"slides"`
	TotalSlides int     `json:"total_slides"`
}

type Caption struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
	Emoji    string   `json:"emoji"`
}

type InstagramData struct {
	Captions []Caption `json:"captions"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

type ThumbnailData struct {
	Thumbnails []Thumbnail `json:"thumbnails"`
}
