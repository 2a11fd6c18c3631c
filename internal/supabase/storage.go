package supabase

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("supabase url is required")
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		now:     time.Now,
	}, nil
}

// ThumbnailPath builds the object key: {video_id}/{style}-{unix_ms}.png
func ThumbnailPath(videoID uuid.UUID, style string, at time.Time) string {
	return fmt.Sprintf("%s/%s-%d.png", videoID.String(), style, at.UnixMilli())
}

// UploadThumbnail stores a PNG and returns its public URL.
func (s *StorageClient) UploadThumbnail(videoID uuid.UUID, style string, data []byte) (string, error) {
	storagePath := ThumbnailPath(videoID, style, s.now())

	contentType := "image/png"
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	return s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

// DeleteVideoFiles removes every stored thumbnail under the video's prefix.
func (s *StorageClient) DeleteVideoFiles(videoID uuid.UUID) error {
	prefix := videoID.String() + "/"

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return nil
	}

	filePaths := make([]string, 0, len(files))
	for _, file := range files {
		if file.Name == "" {
			continue
		}
		filePaths = append(filePaths, prefix+file.Name)
	}
	if len(filePaths) == 0 {
		return nil
	}

	if _, err := s.client.RemoveFile(s.bucket, filePaths); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}
