package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/amishk599/smartresume/internal/model"
)

// AnthropicProvider generates text with the Claude Messages API.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider builds an SDK client. SDK-level retries are disabled;
// retrying is the job of RetryProvider.
func NewAnthropicProvider(baseURL, apiKey string, httpClient *http.Client) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{client: anthropic.NewClient(opts...)}
}

// Complete sends the prompt as one user turn and concatenates the text blocks of the reply.
func (p *AnthropicProvider) Complete(ctx context.Context, req GenerateRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &model.HTTPError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		switch tb := block.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}
