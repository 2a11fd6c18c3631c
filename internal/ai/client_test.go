package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"repurpose-backend/internal/ai"
	"repurpose-backend/internal/apperror"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return ai.NewClient(ai.Config{
		APIKey:   "test-key",
		BaseURL:  server.URL + "/v1",
		Language: "en",
	})
}

func TestClient_Chat(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"tweets\":[]}"}}]}`))
	})

	out, err := client.Chat(context.Background(), ai.ChatRequest{
		System:      "system prompt",
		User:        "user prompt",
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"tweets":[]}`, out)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 1500, body["max_tokens"])
	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
}

func TestClient_Chat_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})

	_, err := client.Chat(context.Background(), ai.ChatRequest{System: "s", User: "u", MaxTokens: 10})

	require.Error(t, err)
	assert.Equal(t, apperror.KindContentGeneration, apperror.KindOf(err))
	assert.Contains(t, apperror.Message(err, ""), "rate limit")
}

func TestClient_Transcribe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		assert.Equal(t, "text", r.FormValue("response_format"))

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello world\n"))
	})

	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o600))

	text, err := client.Transcribe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestClient_Transcribe_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded"}}`))
	})

	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o600))

	_, err := client.Transcribe(context.Background(), path)

	require.Error(t, err)
	assert.Equal(t, apperror.KindTranscription, apperror.KindOf(err))
}

func TestClient_GenerateImage(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://images.example.com/1.png"}]}`))
	})

	url, err := client.GenerateImage(context.Background(), "abstract thumbnail")
	require.NoError(t, err)

	assert.Equal(t, "https://images.example.com/1.png", url)
	assert.Equal(t, "dall-e-3", body["model"])
	assert.Equal(t, "1792x1024", body["size"])
	assert.Equal(t, "standard", body["quality"])
}

func TestClient_GenerateImage_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	})

	_, err := client.GenerateImage(context.Background(), "prompt")
	assert.Error(t, err)
}
