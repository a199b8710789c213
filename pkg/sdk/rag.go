package inkbase

import (
	"context"
	"fmt"
	"time"

	generateuc "github.com/inkwell-ai/inkbase/internal/usecase/generate"
)

// Query returns the k documents most similar to the query text,
// optionally restricted to one doc_type (pass "" for all).
func (c *Client) Query(ctx context.Context, query string, k int, docType string) (results []QueryResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err) }()

	hits, err := c.retrSvc.Search(ctx, c.apiKey, query, k, docType)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results = make([]QueryResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, QueryResult{
			ID:        h.ID,
			Content:   h.Content,
			Metadata:  h.Metadata,
			Distance:  h.Distance,
			Relevance: h.Relevance,
		})
	}
	return results, nil
}

// Chat answers a message grounded in up to nContext stored notes.
func (c *Client) Chat(ctx context.Context, message string, nContext int) (res ChatResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, err) }()

	out, err := c.chatSvc.Chat(ctx, c.apiKey, message, nContext)
	if err != nil {
		return ChatResult{}, fmt.Errorf("chat: %w", err)
	}

	sources := make([]ChatSource, 0, len(out.Sources))
	for _, s := range out.Sources {
		sources = append(sources, ChatSource{ID: s.ID, Title: s.Title, Relevance: s.Relevance})
	}
	return ChatResult{Response: out.Response, ContextUsed: out.ContextUsed, Sources: sources}, nil
}

// Generate runs a raw prompt against a model without retrieval.
// An empty model selects the default.
func (c *Client) Generate(ctx context.Context, model, prompt string) (res GenerateResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("generate", start, err) }()

	out, err := c.genSvc.Generate(ctx, generateuc.Input{
		Model:  model,
		Prompt: prompt,
		APIKey: c.apiKey,
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("generate: %w", err)
	}
	return GenerateResult{
		Provider: out.Provider,
		Model:    out.Model,
		Content:  out.Content,
		Cost:     out.Cost,
	}, nil
}
