// Package retrieval answers semantic queries against the knowledge base.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/store"
)

// DefaultK is the result count when the caller does not specify one.
const DefaultK = 5

// Store is the KNN contract the retrieval service needs.
type Store interface {
	Query(ctx context.Context, vector []float32, k int, filter store.Filter) ([]store.Match, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, apiKey, text string, intent domain.Intent) ([]float32, error)
}

// Service runs embedding-backed retrieval.
type Service struct {
	store    Store
	embedder Embedder
	logger   *zap.Logger
}

// New creates a retrieval service.
func New(store Store, embedder Embedder, logger *zap.Logger) *Service {
	return &Service{store: store, embedder: embedder, logger: logger}
}

// Search embeds the query with query intent and returns the k nearest
// documents, optionally restricted to one doc_type. Relevance is
// 1 - distance; store order (nearest first) is preserved. An empty
// store yields an empty result, not an error.
func (s *Service) Search(ctx context.Context, apiKey, query string, k int, docType string) ([]domain.QueryResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if k <= 0 {
		k = DefaultK
	}

	vec, err := s.embedder.Embed(ctx, apiKey, query, domain.IntentQuery)
	if err != nil {
		return nil, err
	}

	var filter store.Filter
	if docType != "" {
		filter = store.Filter{domain.MetaDocType: docType}
	}

	matches, err := s.store.Query(ctx, vec, k, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}

	results := make([]domain.QueryResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.QueryResult{
			ID:        m.Doc.ID,
			Content:   m.Doc.Content,
			Metadata:  m.Doc.Metadata,
			Distance:  m.Distance,
			Relevance: 1 - m.Distance,
		})
	}

	s.logger.Debug("Knowledge base searched",
		zap.Int("k", k),
		zap.String("doc_type", docType),
		zap.Int("results", len(results)))

	return results, nil
}
