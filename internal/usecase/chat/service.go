// Package chat is the RAG orchestrator: retrieve relevant notes, fold
// them into a grounded prompt and generate an answer with sources.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
)

// DefaultNContext is how many notes back a chat answer by default.
const DefaultNContext = 3

// DefaultContextChars bounds each note's contribution to the prompt.
const DefaultContextChars = 2000

// emptyContext is the placeholder when retrieval finds nothing.
// Generation still runs so the assistant can say so.
const emptyContext = "No relevant notes found."

const promptTemplate = `You are a helpful research assistant. Answer the user's question based on the following notes from their knowledge base. If the notes don't contain relevant information, say so and provide what help you can.

## User's Notes (from Knowledge Base):
%s

## User's Question:
%s

## Instructions:
- Answer based primarily on the notes provided above
- If the notes don't cover the topic, acknowledge this
- Be concise but thorough
- Reference specific notes when relevant
`

// Retriever finds relevant notes for a message.
type Retriever interface {
	Search(ctx context.Context, apiKey, query string, k int, docType string) ([]domain.QueryResult, error)
}

// Source attributes part of an answer to a stored note.
type Source struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Relevance float64 `json:"relevance"`
}

// Result is a chat answer with its grounding.
type Result struct {
	Response    string
	ContextUsed int
	Sources     []Source
}

// Service orchestrates retrieval-augmented chat.
type Service struct {
	retriever    Retriever
	generator    domain.Generator
	model        string
	contextChars int
	maxContext   int
	logger       *zap.Logger
}

// New creates a chat service. model is the fixed generation model for
// chat answers; contextChars <= 0 selects the default per-note bound.
// maxContextDocs caps the per-request note count; <= 0 leaves it
// uncapped.
func New(retriever Retriever, generator domain.Generator, model string, contextChars, maxContextDocs int, logger *zap.Logger) *Service {
	if contextChars <= 0 {
		contextChars = DefaultContextChars
	}
	return &Service{
		retriever:    retriever,
		generator:    generator,
		model:        model,
		contextChars: contextChars,
		maxContext:   maxContextDocs,
		logger:       logger,
	}
}

// Chat retrieves up to nContext notes for the message and generates a
// grounded answer. Retrieval failure fails the chat before any
// generation call; zero retrieved notes does not.
func (s *Service) Chat(ctx context.Context, apiKey, message string, nContext int) (Result, error) {
	if message == "" {
		return Result{}, fmt.Errorf("message is required")
	}
	if nContext <= 0 {
		nContext = DefaultNContext
	}
	if s.maxContext > 0 && nContext > s.maxContext {
		nContext = s.maxContext
	}

	notes, err := s.retriever.Search(ctx, apiKey, message, nContext, "")
	if err != nil {
		return Result{}, fmt.Errorf("query knowledge base: %w", err)
	}

	prompt := fmt.Sprintf(promptTemplate, s.contextText(notes), message)

	response, err := s.generator.Generate(ctx, apiKey, s.model, prompt)
	if err != nil {
		return Result{}, err
	}

	sources := make([]Source, 0, len(notes))
	for _, n := range notes {
		sources = append(sources, Source{
			ID:        n.ID,
			Title:     titleOf(n),
			Relevance: n.Relevance,
		})
	}

	s.logger.Debug("Chat answered", zap.Int("context_used", len(notes)))

	return Result{Response: response, ContextUsed: len(notes), Sources: sources}, nil
}

// contextText renders the retrieved notes as prompt blocks, each note
// capped at contextChars runes.
func (s *Service) contextText(notes []domain.QueryResult) string {
	if len(notes) == 0 {
		return emptyContext
	}
	blocks := make([]string, 0, len(notes))
	for _, n := range notes {
		content := domain.TruncateRunes(n.Content, s.contextChars)
		blocks = append(blocks, "### "+titleOf(n)+"\n"+content)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func titleOf(n domain.QueryResult) string {
	if t, ok := n.Metadata[domain.MetaTitle].(string); ok && t != "" {
		return t
	}
	return "Untitled"
}
