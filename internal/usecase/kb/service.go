// Package kb is the knowledge-base service: content-addressed
// ingestion plus the admin operations (list, delete, clear, stats).
package kb

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
)

// lockStripes is the size of the per-id lock table.
const lockStripes = 64

// Service coordinates document ingestion and admin operations.
type Service struct {
	store     Store
	embedder  Embedder
	prefixLen int
	locks     [lockStripes]sync.Mutex
	logger    *zap.Logger
}

// New creates a knowledge-base service. prefixLen bounds how many
// content runes participate in id derivation; 0 selects the default.
func New(store Store, embedder Embedder, prefixLen int, logger *zap.Logger) *Service {
	if prefixLen <= 0 {
		prefixLen = domain.DefaultIDPrefixLen
	}
	return &Service{store: store, embedder: embedder, prefixLen: prefixLen, logger: logger}
}

// IngestInput describes a document to add.
type IngestInput struct {
	Content  string
	Source   string
	Title    string
	DocType  string
	Metadata map[string]any
}

// IngestResult reports the derived id and whether the document was
// already present.
type IngestResult struct {
	ID             string
	AlreadyExisted bool
}

// Ingest adds a document. The id is derived from source and content
// before anything else, and an existing id short-circuits without an
// embedding call. A striped per-id lock closes the check-then-write
// race between concurrent ingests of the same content.
func (s *Service) Ingest(ctx context.Context, apiKey string, in IngestInput) (IngestResult, error) {
	if in.Content == "" {
		return IngestResult{}, fmt.Errorf("content is required")
	}
	if in.Source == "" {
		return IngestResult{}, fmt.Errorf("source is required")
	}

	id := domain.DocumentID(in.Source, in.Content, s.prefixLen)

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	if exists {
		s.logger.Debug("Document already in knowledge base", zap.String("id", id))
		return IngestResult{ID: id, AlreadyExisted: true}, nil
	}

	vec, err := s.embedder.Embed(ctx, apiKey, in.Content, domain.IntentDocument)
	if err != nil {
		return IngestResult{}, err
	}

	doc := domain.Document{
		ID:        id,
		Content:   in.Content,
		Embedding: vec,
		Metadata:  domain.BuildMetadata(in.Source, in.Title, in.DocType, in.Content, in.Metadata),
	}
	inserted, err := s.store.UpsertIfAbsent(ctx, doc)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}

	s.logger.Info("Document ingested",
		zap.String("id", id),
		zap.String("source", in.Source),
		zap.Bool("inserted", inserted))

	return IngestResult{ID: id, AlreadyExisted: !inserted}, nil
}

// IngestFinding stores one research finding under the research run it
// belongs to.
func (s *Service) IngestFinding(ctx context.Context, apiKey, topic, subtopic, findings, researchID string) (IngestResult, error) {
	return s.Ingest(ctx, apiKey, IngestInput{
		Content: findings,
		Source:  "research:" + researchID,
		Title:   topic + " - " + subtopic,
		DocType: "research_finding",
		Metadata: map[string]any{
			"main_topic":  topic,
			"subtopic":    subtopic,
			"research_id": researchID,
		},
	})
}

// IngestReport stores a completed research report.
func (s *Service) IngestReport(ctx context.Context, apiKey, topic, report, researchID string) (IngestResult, error) {
	return s.Ingest(ctx, apiKey, IngestInput{
		Content: report,
		Source:  "report:" + researchID,
		Title:   "Research Report: " + topic,
		DocType: "research_report",
		Metadata: map[string]any{
			"main_topic":  topic,
			"research_id": researchID,
		},
	})
}

// Documents lists stored documents, up to limit.
func (s *Service) Documents(ctx context.Context, limit int) ([]domain.Document, error) {
	docs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return docs, nil
}

// Delete removes a document. Deleting an absent id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return nil
}

// Clear removes every document.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	s.logger.Info("Knowledge base cleared")
	return nil
}

// Stats reports the document count and where the data lives.
type Stats struct {
	TotalDocuments   int
	PersistDirectory string
}

// Stats returns knowledge-base statistics.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	return Stats{TotalDocuments: count, PersistDirectory: s.store.Location()}, nil
}

func (s *Service) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}
