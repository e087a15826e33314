package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// HuggingFaceProvider calls the Hugging Face text-generation inference API
// for a model repository id such as "mistralai/Mixtral-8x7B-Instruct-v0.1".
type HuggingFaceProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHuggingFaceProvider creates a provider targeting baseURL/models/{repo id}.
func NewHuggingFaceProvider(baseURL, apiKey string, httpClient *http.Client) *HuggingFaceProvider {
	return &HuggingFaceProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	Temperature    float64 `json:"temperature"`
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error string `json:"error"`
	// EstimatedTime is how many seconds a cold model needs before it can
	// answer. Sent with 503 while the model loads.
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// Complete sends the prompt and returns the generated continuation only
// (return_full_text is false, so the prompt is not echoed back).
func (p *HuggingFaceProvider) Complete(ctx context.Context, req GenerateRequest) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: req.Prompt,
		Parameters: hfParameters{
			Temperature:    req.Temperature,
			MaxNewTokens:   req.MaxTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal hf request: %w", err)
	}

	url := p.baseURL + "/models/" + req.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create hf request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("hf request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("read hf response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e hfError
		_ = json.Unmarshal(respBytes, &e)
		httpErr := readHTTPError(resp, respBytes, e.Error)
		if httpErr.RetryAfter == 0 && e.EstimatedTime > 0 {
			httpErr.RetryAfter = time.Duration(math.Ceil(e.EstimatedTime)) * time.Second
		}
		return "", httpErr
	}

	return parseHFGeneration(respBytes)
}

// parseHFGeneration accepts both the list form returned by the serverless API
// and the single-object form returned by dedicated endpoints.
func parseHFGeneration(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}

	if trimmed[0] == '[' {
		var gens []hfGeneration
		if err := json.Unmarshal(trimmed, &gens); err != nil {
			return "", fmt.Errorf("parse hf response: %w", err)
		}
		if len(gens) == 0 {
			return "", nil
		}
		return gens[0].GeneratedText, nil
	}

	var gen struct {
		hfGeneration
		hfError
	}
	if err := json.Unmarshal(trimmed, &gen); err != nil {
		return "", fmt.Errorf("parse hf response: %w", err)
	}
	if gen.Error != "" {
		return "", fmt.Errorf("hf error: %s", gen.Error)
	}
	return gen.GeneratedText, nil
}
