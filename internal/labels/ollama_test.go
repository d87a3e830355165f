package labels

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sortit/internal/common"
)

func TestOllamaSource_Labels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req api.ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llava:13b", req.Model)
		if assert.NotNil(t, req.Stream) {
			assert.False(t, *req.Stream)
		}
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, DefaultPrompt, req.Messages[0].Content)
			if assert.Len(t, req.Messages[0].Images, 1) {
				assert.Equal(t, pngImage.Data, []byte(req.Messages[0].Images[0]))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llava:13b","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":"banana peel, food"},"done":true}` + "\n"))
	}))
	defer server.Close()

	// Paths on the base URL are ignored.
	client, err := New(Config{Provider: "ollama", Model: "llava:13b", BaseURL: server.URL + "/api/chat"}, common.DiscardLogger())
	require.NoError(t, err)

	ls, err := client.Labels(context.Background(), pngImage)
	require.NoError(t, err)
	assert.Equal(t, []string{"banana peel", "food"}, names(ls))
}

func TestOllamaSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model crashed"}`))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 1
	cfg.Provider = "ollama"
	cfg.BaseURL = server.URL

	client, err := New(cfg, common.DiscardLogger())
	require.NoError(t, err)

	_, err = client.Labels(context.Background(), pngImage)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrLabelSourceUnavailable)
}
