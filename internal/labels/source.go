// Package labels obtains free-text labels for an image from a vision model
// or a fixed list.
package labels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/model"
)

// ErrUnsupportedImage is returned for data that does not look like an image.
var ErrUnsupportedImage = errors.New("unsupported image type")

// DefaultPrompt asks a vision model for comma-separated labels.
const DefaultPrompt = "Identify the item in this picture for waste sorting. " +
	"List the object and the materials it is made of as a comma-separated list of short labels " +
	"(1-3 words each), for example: plastic bottle, plastic, bottle. Respond with the list only."

// Source produces the labels for one image.
type Source interface {
	// Labels returns the labels detected in the image. An empty set is not an error.
	Labels(ctx context.Context, img Image) (model.LabelSet, error)
	// Name identifies the source in logs, metrics and history.
	Name() string
}

// Image is an uploaded picture.
type Image struct {
	Data     []byte
	MimeType string
}

// Normalize fills in the MIME type from the content when it is missing and
// rejects empty or non-image data.
func (img Image) Normalize() (Image, error) {
	if len(img.Data) == 0 {
		return img, common.ErrEmptyImage
	}
	if img.MimeType == "" {
		img.MimeType = http.DetectContentType(img.Data)
	}
	if i := strings.Index(img.MimeType, ";"); i >= 0 {
		img.MimeType = strings.TrimSpace(img.MimeType[:i])
	}
	if !strings.HasPrefix(img.MimeType, "image/") {
		return img, fmt.Errorf("%w: %s", ErrUnsupportedImage, img.MimeType)
	}
	return img, nil
}

// Config holds configuration for a label source.
type Config struct {
	HTTPClient *http.Client
	Provider   string
	Model      string
	BaseURL    string
	APIKey     string
	Prompt     string
	Labels     model.LabelSet
	Timeout    time.Duration
	RetryDelay time.Duration
	MaxRetries int
	RateLimit  int
}

func (c Config) prompt() string {
	if strings.TrimSpace(c.Prompt) != "" {
		return c.Prompt
	}
	return DefaultPrompt
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// newProvider builds the raw provider for cfg.Provider.
func newProvider(cfg Config) (Source, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama":
		return newOllamaSource(cfg)
	case "gemini":
		return newGeminiSource(cfg)
	case "openai":
		return newOpenAISource(cfg)
	case "static":
		return NewStatic(cfg.Labels), nil
	default:
		return nil, fmt.Errorf("%w: unsupported label source provider: %q", common.ErrInvalidConfig, cfg.Provider)
	}
}

// Client wraps a provider with rate limiting, a per-call timeout and retries.
type Client struct {
	inner   Source
	limiter *rateLimiter
	logger  *slog.Logger
	retry   common.RetryOptions
	timeout time.Duration
}

// New creates a label source client for the configured provider.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	inner, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(inner, cfg, logger), nil
}

// Wrap adds rate limiting, timeouts and retries to an existing source.
func Wrap(inner Source, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		inner:   inner,
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
		retry:   retryOpts,
		timeout: timeout,
	}
}

// Name returns the wrapped provider name.
func (c *Client) Name() string {
	return c.inner.Name()
}

// Labels validates the image and asks the provider for labels. Failures
// reaching the provider wrap common.ErrLabelSourceUnavailable.
func (c *Client) Labels(ctx context.Context, img Image) (model.LabelSet, error) {
	img, err := img.Normalize()
	if err != nil {
		return nil, err
	}

	var out model.LabelSet
	start := time.Now()
	err = common.WithRetry(ctx, func() error {
		if err := c.limiter.wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", common.ErrLabelSourceUnavailable, err)
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		ls, err := c.inner.Labels(callCtx, img)
		if err != nil {
			return err
		}
		out = ls
		return nil
	}, c.retry)
	if err != nil {
		c.logger.Warn("Label source failed",
			"source", c.inner.Name(),
			"duration", time.Since(start),
			"error", err)
		if !errors.Is(err, common.ErrLabelSourceUnavailable) {
			err = fmt.Errorf("%w: %w", common.ErrLabelSourceUnavailable, err)
		}
		return nil, err
	}

	c.logger.Debug("Labels received",
		"source", c.inner.Name(),
		"count", len(out),
		"duration", time.Since(start))
	return out, nil
}
