package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/metrics"
)

// Generator is a Gemini completion provider.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a Gemini completion provider.
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, apiKey, model, prompt string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("generation: %w", domain.ErrMissingCredential)
	}
	if model == "" {
		return "", fmt.Errorf("generation model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w: %w", domain.ErrUpstream, err)
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("gemini", model, "error").Inc()
		return "", fmt.Errorf("gemini generation: %w: %w", domain.ErrUpstream, err)
	}

	text := resp.Text()
	if text == "" {
		metrics.GenerationRequestsTotal.WithLabelValues("gemini", model, "error").Inc()
		return "", fmt.Errorf("empty generation response: %w", domain.ErrUpstream)
	}

	metrics.GenerationRequestsTotal.WithLabelValues("gemini", model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues("gemini", model).Observe(duration.Seconds())

	return text, nil
}
