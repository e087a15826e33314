package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/smartresume/internal/model"
)

// GenerateRequest is one text-generation call.
type GenerateRequest struct {
	Prompt      string
	Model       string // provider-specific model identifier
	Temperature float64
	MaxTokens   int
}

// LLMProvider sends a prompt to an LLM and returns the raw text response.
// Implementations return *model.HTTPError for non-2xx responses so callers can
// classify and retry them.
type LLMProvider interface {
	Complete(ctx context.Context, req GenerateRequest) (string, error)
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// readHTTPError drains resp and wraps its status in a model.HTTPError.
// detail, when non-empty, replaces the raw body in the message.
func readHTTPError(resp *http.Response, body []byte, detail string) *model.HTTPError {
	if detail == "" {
		detail = string(body)
	}
	return &model.HTTPError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		Err:        fmt.Errorf("%s", detail),
	}
}

// readBody reads at most 1 MiB of resp.Body.
func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
