package supabase_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"repurpose-backend/internal/supabase"
)

func TestThumbnailPath(t *testing.T) {
	videoID := uuid.MustParse("5f0c7d4e-8a51-4b7c-9f2e-3c1d2b4a6e80")
	at := time.UnixMilli(1700000000123)

	path := supabase.ThumbnailPath(videoID, "bold", at)

	assert.Equal(t, "5f0c7d4e-8a51-4b7c-9f2e-3c1d2b4a6e80/bold-1700000000123.png", path)
}

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://project.supabase.co/", "service-key", "thumbnails")
	require.NoError(t, err)

	url := client.GetPublicURL("abc/minimal-1.png")

	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/thumbnails/abc/minimal-1.png", url)
}

func TestNewStorageClient_RequiresURL(t *testing.T) {
	_, err := supabase.NewStorageClient("", "service-key", "thumbnails")
	assert.Error(t, err)
}

func TestStorageClient_UploadThumbnail(t *testing.T) {
	var gotPath string
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"thumbnails/uploaded.png"}`))
	}))
	defer server.Close()

	client, err := supabase.NewStorageClient(server.URL, "service-key", "thumbnails")
	require.NoError(t, err)

	videoID := uuid.New()
	url, err := client.UploadThumbnail(videoID, "professional", []byte("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/storage/v1/object/thumbnails/"+videoID.String()+"/professional-"))
	assert.Equal(t, "png-bytes", gotBody)
	assert.True(t, strings.HasPrefix(url, server.URL+"/storage/v1/object/public/thumbnails/"+videoID.String()+"/professional-"))
	assert.True(t, strings.HasSuffix(url, ".png"))
}
