package labels

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/model"
)

const (
	defaultOpenAIURL   = "https://api.openai.com"
	defaultOpenAIModel = "gpt-4o-mini"
)

// openAISource talks to any OpenAI-compatible chat completions endpoint
// that accepts image_url content parts.
type openAISource struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	prompt     string
}

func newOpenAISource(cfg Config) (*openAISource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}

	return &openAISource{
		httpClient: cfg.httpClient(),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		prompt:     cfg.prompt(),
	}, nil
}

func (s *openAISource) Name() string {
	return "openai"
}

// openAIResponse represents the parts of the chat completions response we use.
type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Labels sends the image as a data URI and parses the text reply.
func (s *openAISource) Labels(ctx context.Context, img Image) (model.LabelSet, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", img.MimeType, base64.StdEncoding.EncodeToString(img.Data))

	requestBody := map[string]any{
		"model": s.model,
		"messages": []map[string]any{
			{
				"role":    "system",
				"content": "You label photos of household waste. Respond with a comma-separated list of short labels and nothing else.",
			},
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": s.prompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURI}},
				},
			},
		},
		"temperature": 0.4,
		"max_tokens":  50,
	}

	headers := map[string]string{"Authorization": "Bearer " + s.apiKey}

	var resp openAIResponse
	if err := postJSON(ctx, s.httpClient, s.baseURL+"/v1/chat/completions", headers, requestBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no completion choices returned", common.ErrLabelSourceUnavailable)
	}
	return ParseLabelText(resp.Choices[0].Message.Content), nil
}
