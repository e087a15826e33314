package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// OpenAIProvider calls an OpenAI-compatible /chat/completions endpoint and
// returns the assistant's plain-text reply.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIProvider creates a provider targeting an OpenAI-compatible API.
func NewOpenAIProvider(baseURL, apiKey string, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// chatRequest mirrors the OpenAI /v1/chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse mirrors the relevant fields of the OpenAI response.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Complete sends the prompt as a single user message.
func (p *OpenAIProvider) Complete(ctx context.Context, req GenerateRequest) (string, error) {
	reqBody := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an experienced career coach who writes clear, well-structured resume advice."},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	url := p.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}

	var chatResp chatResponse
	parseErr := json.Unmarshal(respBytes, &chatResp)

	if resp.StatusCode != http.StatusOK {
		detail := ""
		if parseErr == nil && chatResp.Error != nil {
			detail = chatResp.Error.Message
		}
		return "", readHTTPError(resp, respBytes, detail)
	}

	if parseErr != nil {
		return "", fmt.Errorf("parse llm response: %w", parseErr)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("llm error (%s): %s", chatResp.Error.Type, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", nil
	}

	return chatResp.Choices[0].Message.Content, nil
}
