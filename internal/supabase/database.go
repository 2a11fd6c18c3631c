package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

const videoColumns = `id, user_id, youtube_url, video_id, title, duration, transcript,
	transcript_status, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var (
		video        models.Video
		title        sql.NullString
		duration     sql.NullInt64
		transcript   sql.NullString
		errorMessage sql.NullString
	)
	err := row.Scan(
		&video.ID, &video.UserID, &video.YoutubeURL, &video.VideoID, &title, &duration,
		&transcript, &video.TranscriptStatus, &errorMessage, &video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.Title = stringPtr(title)
	video.Transcript = stringPtr(transcript)
	video.ErrorMessage = stringPtr(errorMessage)
	if duration.Valid {
		d := int(duration.Int64)
		video.Duration = &d
	}
	return &video, nil
}

func (d *DatabaseClient) CreateVideo(ctx context.Context, userID uuid.UUID, youtubeURL, sourceID string) (*models.Video, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO videos (user_id, youtube_url, video_id, transcript_status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+videoColumns,
		userID, youtubeURL, sourceID, models.StatusPending,
	)
	video, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	return video, nil
}

func (d *DatabaseClient) GetVideo(ctx context.Context, videoID, userID uuid.UUID) (*models.Video, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE id = $1 AND user_id = $2
	`, videoID, userID)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("Video not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

func (d *DatabaseClient) ListVideos(ctx context.Context, userID uuid.UUID) ([]models.Video, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, *video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	return videos, nil
}

func (d *DatabaseClient) UpdateVideoStatus(ctx context.Context, videoID uuid.UUID, status models.Status) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE videos
		SET transcript_status = $1
		WHERE id = $2
	`, status, videoID)
	if err != nil {
		return fmt.Errorf("failed to update video status: %w", err)
	}
	return nil
}

func (d *DatabaseClient) UpdateVideoMetadata(ctx context.Context, videoID uuid.UUID, title string, duration int) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE videos
		SET title = $1, duration = $2
		WHERE id = $3
	`, title, duration, videoID)
	if err != nil {
		return fmt.Errorf("failed to update video metadata: %w", err)
	}
	return nil
}

// UpdateVideoTranscript records the outcome of transcription. An empty errMsg clears error_message.
func (d *DatabaseClient) UpdateVideoTranscript(ctx context.Context, videoID uuid.UUID, transcript string, status models.Status, errMsg string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE videos
		SET transcript = $1, transcript_status = $2, error_message = $3
		WHERE id = $4
	`, transcript, status, nullString(errMsg), videoID)
	if err != nil {
		return fmt.Errorf("failed to update video transcript: %w", err)
	}
	return nil
}

// DeleteVideo removes the video; content rows go with it through ON DELETE CASCADE.
func (d *DatabaseClient) DeleteVideo(ctx context.Context, videoID, userID uuid.UUID) error {
	result, err := d.db.ExecContext(ctx, `
		DELETE FROM videos
		WHERE id = $1 AND user_id = $2
	`, videoID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("Video not found")
	}
	return nil
}

func (d *DatabaseClient) GetContent(ctx context.Context, videoID uuid.UUID, contentType models.ContentType) (*models.Content, error) {
	var (
		content      models.Content
		data         []byte
		errorMessage sql.NullString
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT id, video_id, content_type, content_data, status, error_message, created_at, updated_at
		FROM content
		WHERE video_id = $1 AND content_type = $2
	`, videoID, contentType).Scan(
		&content.ID, &content.VideoID, &content.ContentType, &data,
		&content.Status, &errorMessage, &content.CreatedAt, &content.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("Content not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	content.ContentData = json.RawMessage(data)
	content.ErrorMessage = stringPtr(errorMessage)
	return &content, nil
}

// UpsertContent writes the single row for (video, type). Workers always overwrite.
func (d *DatabaseClient) UpsertContent(ctx context.Context, videoID uuid.UUID, contentType models.ContentType, data any, status models.Status, errMsg string) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode content data: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO content (video_id, content_type, content_data, status, error_message)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (video_id, content_type) DO UPDATE
		SET content_data = EXCLUDED.content_data,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			updated_at = NOW()
	`, videoID, contentType, payload, status, nullString(errMsg))
	if err != nil {
		return fmt.Errorf("failed to upsert content: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := d.db.QueryRowContext(ctx, `
		SELECT id, credits_remaining, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, userID).Scan(&profile.ID, &profile.CreditsRemaining, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("Profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// GetCredits returns the balance, treating a missing profile as zero.
func (d *DatabaseClient) GetCredits(ctx context.Context, userID uuid.UUID) (int, error) {
	var credits int
	err := d.db.QueryRowContext(ctx, `
		SELECT credits_remaining FROM profiles WHERE id = $1
	`, userID).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check credits: %w", err)
	}
	return credits, nil
}

// DeductCredit takes one credit in a single conditional update, so concurrent
// workers can never push the balance below zero.
func (d *DatabaseClient) DeductCredit(ctx context.Context, userID uuid.UUID) (int, error) {
	var remaining int
	err := d.db.QueryRowContext(ctx, `
		UPDATE profiles
		SET credits_remaining = credits_remaining - 1
		WHERE id = $1 AND credits_remaining >= 1
		RETURNING credits_remaining
	`, userID).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.InsufficientCredits()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to deduct credit: %w", err)
	}
	return remaining, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
