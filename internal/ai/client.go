package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/smartresume/internal/config"
	"github.com/amishk599/smartresume/internal/model"
)

// ErrorKind classifies a failed generation for display.
type ErrorKind int

const (
	KindTransport ErrorKind = iota // network failure, timeout, non-2xx status
	KindAuth                       // endpoint rejected the credential
	KindEmpty                      // endpoint answered without any text
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindEmpty:
		return "empty"
	default:
		return "transport"
	}
}

// InferenceError is returned by Client.Generate for every failed call.
type InferenceError struct {
	Kind ErrorKind
	Err  error
}

func (e *InferenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("inference %s error", e.Kind)
	}
	return fmt.Sprintf("inference %s error: %v", e.Kind, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown in place of generated content.
func (e *InferenceError) UserMessage() string {
	switch e.Kind {
	case KindAuth:
		return "The model endpoint rejected the API token. Check the configured credential and try again."
	case KindEmpty:
		return "The model returned an empty response. Please try submitting again."
	default:
		return fmt.Sprintf("Could not reach the model endpoint: %v. Please try again.", e.Err)
	}
}

var errEmptyResponse = errors.New("no generated text in response")

// Client sends rendered prompts to the configured model. One call per Generate;
// retry policy, if any, lives in the provider it wraps.
type Client struct {
	provider LLMProvider
	cfg      *config.InferenceConfig
	logger   *slog.Logger
}

// NewClient builds the inference client from the startup configuration.
// A missing credential is a configuration error.
func NewClient(cfg *config.InferenceConfig, provider LLMProvider, logger *slog.Logger) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, &config.ConfigError{Field: "inference.api_key", Message: "is required"}
	}
	return &Client{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Generate sends prompt to the model and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := c.provider.Complete(ctx, GenerateRequest{
		Prompt:      prompt,
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxNewTokens,
	})
	if err != nil {
		ierr := classify(err)
		c.logger.Error("generation failed",
			"provider", c.cfg.Provider,
			"model", c.cfg.Model,
			"kind", ierr.Kind.String(),
			"duration", time.Since(start),
			"error", err,
		)
		return "", ierr
	}

	if strings.TrimSpace(text) == "" {
		c.logger.Warn("generation returned no text", "provider", c.cfg.Provider, "model", c.cfg.Model)
		return "", &InferenceError{Kind: KindEmpty, Err: errEmptyResponse}
	}

	c.logger.Info("generation complete",
		"provider", c.cfg.Provider,
		"model", c.cfg.Model,
		"duration", time.Since(start),
		"chars", len(text),
	)
	return strings.TrimSpace(text), nil
}

func classify(err error) *InferenceError {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) &&
		(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
		return &InferenceError{Kind: KindAuth, Err: err}
	}
	return &InferenceError{Kind: KindTransport, Err: err}
}
