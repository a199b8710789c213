// Package generate routes completion requests to a provider gateway
// and prices them.
package generate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
)

// DefaultProvider is used when the request names none.
const DefaultProvider = "gemini"

// DefaultModel is used when the request names none.
const DefaultModel = "gemini-2.5-flash"

// pricing maps model names to their fixed per-request cost. Unknown
// models cost 1.
var pricing = map[string]int{
	"gemini-2.0-flash":      1,
	"gemini-2.5-flash":      1,
	"gemini-2.5-flash-lite": 1,
	"gemini-2.5-pro":        15,
	"gemini-3.0-pro-preview": 15,
}

// Input is one generation request.
type Input struct {
	Provider string
	Model    string
	Prompt   string
	APIKey   string
	BaseURL  string
}

// Output is a priced completion.
type Output struct {
	Provider string
	Model    string
	Content  string
	Cost     int
}

// Service routes generation requests by provider name.
type Service struct {
	gemini domain.Generator
	openai OpenAIGenerator
	logger *zap.Logger
}

// OpenAIGenerator is the OpenAI-compatible gateway contract. An empty
// baseURL means the gateway's configured endpoint; a non-empty one
// retargets the call, which covers any provider speaking the
// chat-completions API.
type OpenAIGenerator interface {
	GenerateWith(ctx context.Context, apiKey, baseURL, model, prompt string) (string, error)
}

// New creates a generation router.
func New(gemini domain.Generator, openai OpenAIGenerator, logger *zap.Logger) *Service {
	return &Service{gemini: gemini, openai: openai, logger: logger}
}

// Generate runs the prompt against the requested provider.
func (s *Service) Generate(ctx context.Context, in Input) (Output, error) {
	if in.Prompt == "" {
		return Output{}, fmt.Errorf("prompt is required")
	}
	if in.APIKey == "" {
		return Output{}, fmt.Errorf("generation: %w", domain.ErrMissingCredential)
	}

	provider := in.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	model := in.Model
	if model == "" {
		model = DefaultModel
	}

	var (
		content string
		err     error
	)
	switch provider {
	case "gemini":
		content, err = s.gemini.Generate(ctx, in.APIKey, model, in.Prompt)
	case "openai":
		content, err = s.openai.GenerateWith(ctx, in.APIKey, in.BaseURL, model, in.Prompt)
	default:
		return Output{}, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, provider)
	}
	if err != nil {
		return Output{}, err
	}

	s.logger.Debug("Generation completed",
		zap.String("provider", provider),
		zap.String("model", model))

	return Output{
		Provider: provider,
		Model:    model,
		Content:  content,
		Cost:     Cost(model),
	}, nil
}

// Cost returns the fixed price for a model.
func Cost(model string) int {
	if c, ok := pricing[model]; ok {
		return c
	}
	return 1
}
