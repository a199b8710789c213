// Package openai is the OpenAI-compatible completion gateway. With a
// custom base URL it also reaches other chat-completions-speaking
// providers.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/metrics"
)

// Generator is an OpenAI-compatible completion provider.
type Generator struct {
	baseURL string
	logger  *zap.Logger
}

// NewGenerator creates an OpenAI-compatible completion provider.
// baseURL may be empty (api.openai.com) or point at any compatible
// endpoint; it can be overridden per request via WithBaseURL.
func NewGenerator(baseURL string, logger *zap.Logger) *Generator {
	return &Generator{baseURL: baseURL, logger: logger}
}

// WithBaseURL returns a copy of the generator targeting baseURL.
func (g *Generator) WithBaseURL(baseURL string) *Generator {
	if baseURL == "" {
		return g
	}
	return &Generator{baseURL: baseURL, logger: g.logger}
}

// GenerateWith generates against baseURL when it is non-empty, the
// configured endpoint otherwise.
func (g *Generator) GenerateWith(ctx context.Context, apiKey, baseURL, model, prompt string) (string, error) {
	return g.WithBaseURL(baseURL).Generate(ctx, apiKey, model, prompt)
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("generation: %w", domain.ErrMissingCredential)
	}
	if model == "" {
		return "", fmt.Errorf("generation model is required")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if g.baseURL != "" {
		clientCfg.BaseURL = g.baseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("openai", model, "error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues("openai", model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrUpstream)
	}

	metrics.GenerationRequestsTotal.WithLabelValues("openai", model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues("openai", model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrUpstream.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("completion API error %d: %s: %w", reqErr.HTTPStatusCode, detail, domain.ErrUpstream)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, domain.ErrUpstream)
	}

	return fmt.Errorf("completion request failed: %w: %w", domain.ErrUpstream, err)
}

// extractDetail pulls the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
