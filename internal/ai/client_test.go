package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/amishk599/smartresume/internal/config"
	"github.com/amishk599/smartresume/internal/model"
)

// mockProvider is a stub LLMProvider for testing.
type mockProvider struct {
	response string
	err      error
	got      GenerateRequest
	calls    int
}

func (m *mockProvider) Complete(_ context.Context, req GenerateRequest) (string, error) {
	m.calls++
	m.got = req
	return m.response, m.err
}

func testInferenceConfig() *config.InferenceConfig {
	return &config.InferenceConfig{
		Provider:     "huggingface",
		Model:        "mistralai/Mixtral-8x7B-Instruct-v0.1",
		APIKey:       "hf_test",
		Temperature:  config.DefaultTemperature,
		MaxNewTokens: config.DefaultMaxTokens,
	}
}

func newTestClient(t *testing.T, p LLMProvider) *Client {
	t.Helper()
	c, err := NewClient(testInferenceConfig(), p, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RequiresCredential(t *testing.T) {
	cfg := testInferenceConfig()
	cfg.APIKey = ""
	_, err := NewClient(cfg, &mockProvider{}, nil)
	var cfgErr *config.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *config.ConfigError", err)
	}
}

func TestGenerate_PassesModelAndTemperature(t *testing.T) {
	mock := &mockProvider{response: "  Objective: build things  \n"}
	c := newTestClient(t, mock)

	got, err := c.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Objective: build things" {
		t.Errorf("got %q", got)
	}
	if mock.got.Prompt != "the prompt" || mock.got.Model != "mistralai/Mixtral-8x7B-Instruct-v0.1" {
		t.Errorf("request = %+v", mock.got)
	}
	if mock.got.Temperature != 0.6 {
		t.Errorf("temperature = %v, want 0.6", mock.got.Temperature)
	}
	if mock.calls != 1 {
		t.Errorf("calls = %d, want 1", mock.calls)
	}
}

func TestGenerate_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     ErrorKind
	}{
		{"unauthorized", "", &model.HTTPError{StatusCode: 401}, KindAuth},
		{"forbidden", "", &model.HTTPError{StatusCode: 403}, KindAuth},
		{"server error", "", &model.HTTPError{StatusCode: 502}, KindTransport},
		{"network", "", errors.New("dial tcp: connection refused"), KindTransport},
		{"timeout", "", context.DeadlineExceeded, KindTransport},
		{"empty", "   ", nil, KindEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &mockProvider{response: tt.response, err: tt.err})
			_, err := c.Generate(context.Background(), "p")
			var ierr *InferenceError
			if !errors.As(err, &ierr) {
				t.Fatalf("error = %v, want *InferenceError", err)
			}
			if ierr.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", ierr.Kind, tt.want)
			}
			if ierr.UserMessage() == "" {
				t.Error("UserMessage is empty")
			}
		})
	}
}

func TestInferenceError_UnwrapsToCause(t *testing.T) {
	c := newTestClient(t, &mockProvider{err: context.DeadlineExceeded})
	_, err := c.Generate(context.Background(), "p")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("errors.Is(DeadlineExceeded) = false for %v", err)
	}
}
