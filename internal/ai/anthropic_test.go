package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/smartresume/internal/model"
)

func TestAnthropic_ConcatenatesTextBlocks(t *testing.T) {
	var gotBody map[string]any
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [
				{"type": "text", "text": "Objective\n"},
				{"type": "text", "text": "Experience"}
			],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(srv.URL, "sk-ant-test", srv.Client())
	got, err := p.Complete(context.Background(), GenerateRequest{
		Prompt: "outline", Model: "claude-sonnet-4-20250514", Temperature: 0.6, MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Objective\nExperience" {
		t.Errorf("got %q", got)
	}
	if gotKey != "sk-ant-test" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotBody["temperature"] != 0.6 {
		t.Errorf("temperature = %v, want 0.6", gotBody["temperature"])
	}
	if gotBody["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v, want 256", gotBody["max_tokens"])
	}
}

func TestAnthropic_AuthErrorBecomesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(srv.URL, "bad", srv.Client())
	_, err := p.Complete(context.Background(), GenerateRequest{Prompt: "x", Model: "claude-sonnet-4-20250514", MaxTokens: 16})
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("error = %v, want HTTPError 401", err)
	}
}
