package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/amishk599/smartresume/internal/model"
)

// GeminiProvider generates text with Google Gemini.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider dials the Gemini API. Close releases the connection.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// grpcStatusHTTP maps the gRPC codes that matter for classification to HTTP statuses.
var grpcStatusHTTP = map[codes.Code]int{
	codes.Unauthenticated:   http.StatusUnauthorized,
	codes.PermissionDenied:  http.StatusForbidden,
	codes.ResourceExhausted: http.StatusTooManyRequests,
	codes.Unavailable:       http.StatusServiceUnavailable,
	codes.Internal:          http.StatusInternalServerError,
	codes.InvalidArgument:   http.StatusBadRequest,
	codes.NotFound:          http.StatusNotFound,
}

// Complete sends the prompt as a single text part.
func (p *GeminiProvider) Complete(ctx context.Context, req GenerateRequest) (string, error) {
	m := p.client.GenerativeModel(req.Model)
	m.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", geminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// geminiError converts a gRPC status into a model.HTTPError. Gemini rejects a
// bad key with InvalidArgument rather than Unauthenticated, so that case is
// recognised by its ErrorInfo reason or message and reported as 401.
func geminiError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("gemini generate: %w", err)
	}
	code, known := grpcStatusHTTP[st.Code()]
	if !known {
		return fmt.Errorf("gemini generate: %w", err)
	}
	if st.Code() == codes.InvalidArgument && apiKeyInvalid(st) {
		code = http.StatusUnauthorized
	}
	return &model.HTTPError{StatusCode: code, Err: err}
}

func apiKeyInvalid(st *status.Status) bool {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetReason() == "API_KEY_INVALID" {
			return true
		}
	}
	return strings.Contains(st.Message(), "API key not valid")
}

// Close releases resources held by the client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}
