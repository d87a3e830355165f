package labels

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/model"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llava"
)

// ollamaSource asks a local Ollama vision model to describe the image.
type ollamaSource struct {
	client *api.Client
	model  string
	prompt string
}

func newOllamaSource(cfg Config) (*ollamaSource, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = defaultOllamaURL
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama URL: %w", common.ErrInvalidConfig, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid ollama URL %q", common.ErrInvalidConfig, raw)
	}

	// Drop any path such as /api/chat; the SDK adds its own.
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &ollamaSource{
		client: api.NewClient(base, cfg.httpClient()),
		model:  model,
		prompt: cfg.prompt(),
	}, nil
}

func (s *ollamaSource) Name() string {
	return "ollama"
}

// Labels sends a single non-streaming chat request with the image attached.
func (s *ollamaSource) Labels(ctx context.Context, img Image) (model.LabelSet, error) {
	stream := false
	req := &api.ChatRequest{
		Model: s.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: s.prompt,
				Images:  []api.ImageData{api.ImageData(img.Data)},
			},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0.4},
	}

	var content string
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		wrapped := fmt.Errorf("%w: ollama chat: %w", common.ErrLabelSourceUnavailable, err)

		var statusErr api.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
			statusErr.StatusCode != http.StatusTooManyRequests {
			return nil, common.Permanent(wrapped)
		}
		return nil, wrapped
	}

	return ParseLabelText(content), nil
}
