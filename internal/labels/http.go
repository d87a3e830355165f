package labels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Veraticus/sortit/internal/common"
)

// maxErrorBody bounds how much of an error response ends up in messages.
const maxErrorBody = 512

// postJSON sends body as JSON and decodes a 200 response into out. Failures
// wrap common.ErrLabelSourceUnavailable; client errors other than 429 are
// marked permanent so they are not retried.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return common.Permanent(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", common.ErrLabelSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", common.ErrLabelSourceUnavailable, err)
	}

	if err := statusError(resp.StatusCode, data); err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %w", common.ErrLabelSourceUnavailable, err)
	}
	return nil
}

// statusError classifies a non-200 status code.
func statusError(code int, body []byte) error {
	if code == http.StatusOK {
		return nil
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w (status %d)", common.ErrLabelSourceUnavailable, common.ErrRateLimit, code)
	case code >= 400 && code < 500:
		return common.Permanent(fmt.Errorf("%w: status %d: %s", common.ErrLabelSourceUnavailable, code, body))
	default:
		return fmt.Errorf("%w: status %d: %s", common.ErrLabelSourceUnavailable, code, body)
	}
}
