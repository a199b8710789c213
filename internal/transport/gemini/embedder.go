// Package gemini talks to the Gemini API for embeddings and
// completions. API keys arrive per request and a fresh client is built
// from each one, so no credential ever rests on a struct.
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

// DefaultEmbeddingModel is the Gemini embedding model used for the
// knowledge base.
const DefaultEmbeddingModel = "text-embedding-004"

// Embedder is a Gemini embedding provider.
type Embedder struct {
	model  string
	logger *zap.Logger
}

// NewEmbedder creates a Gemini embedding provider. An empty model
// selects DefaultEmbeddingModel.
func NewEmbedder(model string, logger *zap.Logger) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{model: model, logger: logger}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, apiKey, text string, intent domain.Intent) ([]float32, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding: %w", domain.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w: %w", domain.ErrUpstream, err)
	}

	cfg := &genai.EmbedContentConfig{TaskType: taskType(intent)}

	start := time.Now()
	resp, err := client.Models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return nil, fmt.Errorf("gemini embedding: %w: %w", domain.ErrUpstream, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.model, "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrUpstream)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.model).Observe(duration.Seconds())

	return resp.Embeddings[0].Values, nil
}

// taskType maps the retrieval intent onto Gemini's task type names.
func taskType(intent domain.Intent) string {
	if intent == domain.IntentQuery {
		return "RETRIEVAL_QUERY"
	}
	return "RETRIEVAL_DOCUMENT"
}
