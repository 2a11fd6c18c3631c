package generator_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"repurpose-backend/internal/apperror"
	"repurpose-backend/internal/generator"
	"repurpose-backend/internal/models"
)

type fakeImages struct {
	fail map[string]bool
}

func (f *fakeImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	for style := range f.fail {
		if strings.Contains(prompt, style) {
			return "", errors.New("content policy violation")
		}
	}
	return "https://ai.example.com/img.png", nil
}

type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png"), nil
}

type fakeUploader struct {
	mu     sync.Mutex
	err    error
	styles []string
}

func (f *fakeUploader) UploadThumbnail(videoID uuid.UUID, style string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.styles = append(f.styles, style)
	return "https://storage.example.com/" + videoID.String() + "/" + style + ".png", nil
}

// Style descriptions used to route failures in fakeImages.
const (
	professionalDesc = "clean, corporate"
	boldDesc         = "high contrast"
	minimalDesc      = "white background"
)

func thumbnailJob() models.ContentJob {
	return models.ContentJob{
		VideoID:    uuid.New(),
		UserID:     uuid.New(),
		Transcript: "hello world",
		VideoTitle: "Greeting",
	}
}

func TestThumbnailGenerator_AllStyles(t *testing.T) {
	chat := &fakeChat{reply: "  Friendly greetings  "}
	uploader := &fakeUploader{}
	gen := generator.NewThumbnailGenerator(chat, &fakeImages{}, &fakeFetcher{}, uploader, loadPrompts(t), discardLogger())

	job := thumbnailJob()
	data, err := gen.Generate(context.Background(), job)
	require.NoError(t, err)

	require.Len(t, data.Thumbnails, 3)
	assert.Equal(t, "professional", data.Thumbnails[0].Style)
	assert.Equal(t, "bold", data.Thumbnails[1].Style)
	assert.Equal(t, "minimal", data.Thumbnails[2].Style)
	for _, thumb := range data.Thumbnails {
		assert.True(t, strings.HasPrefix(thumb.URL, "https://storage.example.com/"+job.VideoID.String()))
		assert.Contains(t, thumb.Prompt, "video about: Friendly greetings.")
	}
	assert.ElementsMatch(t, []string{"professional", "bold", "minimal"}, uploader.styles)
	assert.Equal(t, 50, chat.requests[0].MaxTokens)
}

func TestThumbnailGenerator_OneOfThree(t *testing.T) {
	images := &fakeImages{fail: map[string]bool{professionalDesc: true, minimalDesc: true}}
	gen := generator.NewThumbnailGenerator(&fakeChat{reply: "topic"}, images, &fakeFetcher{}, &fakeUploader{}, loadPrompts(t), discardLogger())

	data, err := gen.Generate(context.Background(), thumbnailJob())
	require.NoError(t, err)

	require.Len(t, data.Thumbnails, 1)
	assert.Equal(t, "bold", data.Thumbnails[0].Style)
}

func TestThumbnailGenerator_NoneSucceed(t *testing.T) {
	images := &fakeImages{fail: map[string]bool{professionalDesc: true, boldDesc: true, minimalDesc: true}}
	gen := generator.NewThumbnailGenerator(&fakeChat{reply: "topic"}, images, &fakeFetcher{}, &fakeUploader{}, loadPrompts(t), discardLogger())

	_, err := gen.Generate(context.Background(), thumbnailJob())

	require.Error(t, err)
	assert.Equal(t, apperror.KindContentGeneration, apperror.KindOf(err))
	assert.Equal(t, "Failed to generate any thumbnails", apperror.Message(err, ""))
	assert.Contains(t, err.Error(), "content policy violation")
}

type slowImages struct {
	mu       sync.Mutex
	inFlight int
	peak     int
}

func (f *slowImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
	f.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return "https://ai.example.com/img.png", nil
}

func TestThumbnailGenerator_BoundsConcurrentImages(t *testing.T) {
	images := &slowImages{}
	gen := generator.NewThumbnailGenerator(&fakeChat{reply: "topic"}, images, &fakeFetcher{}, &fakeUploader{}, loadPrompts(t), discardLogger())

	data, err := gen.Generate(context.Background(), thumbnailJob())
	require.NoError(t, err)

	assert.Len(t, data.Thumbnails, 3)
	assert.LessOrEqual(t, images.peak, 2)
}

func TestThumbnailGenerator_UploadFailureKeepsProviderURL(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("bucket missing")}
	gen := generator.NewThumbnailGenerator(&fakeChat{reply: "topic"}, &fakeImages{}, &fakeFetcher{}, uploader, loadPrompts(t), discardLogger())

	data, err := gen.Generate(context.Background(), thumbnailJob())
	require.NoError(t, err)

	require.Len(t, data.Thumbnails, 3)
	for _, thumb := range data.Thumbnails {
		assert.Equal(t, "https://ai.example.com/img.png", thumb.URL)
	}
}

func TestThumbnailGenerator_TopicFailureUsesTitle(t *testing.T) {
	gen := generator.NewThumbnailGenerator(&fakeChat{err: errors.New("down")}, &fakeImages{}, &fakeFetcher{err: errors.New("timeout")}, &fakeUploader{}, loadPrompts(t), discardLogger())

	data, err := gen.Generate(context.Background(), thumbnailJob())
	require.NoError(t, err)

	assert.Contains(t, data.Thumbnails[0].Prompt, "video about: Greeting.")
}
