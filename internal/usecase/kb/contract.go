package kb

import (
	"context"

	"github.com/inkwell-ai/inkbase/internal/domain"
)

// Store is the persistence contract the knowledge base needs.
type Store interface {
	UpsertIfAbsent(ctx context.Context, doc domain.Document) (inserted bool, err error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit int) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Location() string
}

// Embedder vectorizes document content before storage.
type Embedder interface {
	Embed(ctx context.Context, apiKey, text string, intent domain.Intent) ([]float32, error)
}
