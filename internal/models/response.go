package models

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type CreateVideoResponse struct {
	Success bool   `json:"success"`
	VideoID string `json:"video_id"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

type VideoListResponse struct {
	Success bool    `json:"success"`
	Videos  []Video `json:"videos"`
}

type VideoResponse struct {
	Success bool   `json:"success"`
	Video   *Video `json:"video"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ContentResponse struct {
	Success bool     `json:"success"`
	Content *Content `json:"content"`
	Cached  bool     `json:"cached,omitempty"`
}

type ContentQueuedResponse struct {
	Success bool   `json:"success"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

type ProfileResponse struct {
	Success bool     `json:"success"`
	Profile *Profile `json:"profile"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Queue    string `json:"queue,omitempty"`
}
