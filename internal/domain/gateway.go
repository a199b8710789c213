package domain

import "context"

// Intent tells the embedding provider what the vector will be used for.
// Document and query vectors are asymmetric in Gemini's retrieval models.
type Intent string

const (
	// IntentDocument embeds text for storage.
	IntentDocument Intent = "retrieval_document"
	// IntentQuery embeds text for lookup.
	IntentQuery Intent = "retrieval_query"
)

// Embedder converts text into a vector. The API key is a per-request
// argument: implementations must not retain it between calls.
type Embedder interface {
	Embed(ctx context.Context, apiKey, text string, intent Intent) ([]float32, error)
}

// Generator produces a completion for a prompt. Same credential rule
// as Embedder.
type Generator interface {
	Generate(ctx context.Context, apiKey, model, prompt string) (string, error)
}
