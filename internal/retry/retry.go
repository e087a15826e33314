// Package retry re-sends generation requests that failed for reasons a later
// attempt can fix: rate limits, a cold model still loading, provider 5xx and
// dropped connections.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/amishk599/smartresume/internal/ai"
	"github.com/amishk599/smartresume/internal/model"
)

// MaxWait caps a single pause between attempts, including a provider's own
// Retry-After or model warm-up estimate.
const MaxWait = time.Minute

var _ ai.LLMProvider = (*RetryProvider)(nil)

// RetryProvider wraps an LLMProvider and repeats a generation request after
// transient failures.
type RetryProvider struct {
	inner      ai.LLMProvider
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryProvider allows maxRetries further attempts after the first one;
// 0 sends each request once. Without a provider hint the pause starts at
// baseDelay and doubles per attempt.
func NewRetryProvider(inner ai.LLMProvider, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryProvider {
	return &RetryProvider{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Complete sends req, retrying while the failure is transient and attempts
// remain. The last provider error is returned unchanged.
func (p *RetryProvider) Complete(ctx context.Context, req ai.GenerateRequest) (string, error) {
	for attempt := 1; ; attempt++ {
		text, err := p.inner.Complete(ctx, req)
		if err == nil {
			return text, nil
		}

		reason, ok := transient(err)
		if !ok || attempt > p.maxRetries {
			return "", err
		}

		delay := p.wait(attempt, err)
		p.logger.Warn("generation failed, retrying",
			"reason", reason,
			"model", req.Model,
			"attempt", attempt,
			"max_retries", p.maxRetries,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
}

// wait returns the pause before the next attempt. A provider hint (Retry-After
// or a loading model's estimate) wins over exponential backoff with ±30% jitter.
func (p *RetryProvider) wait(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return min(httpErr.RetryAfter, MaxWait)
	}

	delay := p.baseDelay << (attempt - 1)
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
	return min(delay, MaxWait)
}

// transient reports whether err is worth another attempt and names why.
// Auth failures, bad requests and unreadable responses fail the same way
// every time.
func transient(err error) (string, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return "rate limited", true
		case httpErr.StatusCode == http.StatusServiceUnavailable && httpErr.RetryAfter > 0:
			return "model loading", true
		case httpErr.StatusCode >= 500:
			return "provider error", true
		}
		return "", false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return "network", true
	}
	return "", false
}
