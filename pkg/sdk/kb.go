package inkbase

import (
	"context"
	"fmt"
	"time"

	kbuc "github.com/inkwell-ai/inkbase/internal/usecase/kb"
)

// AddDocument ingests content under a source. The returned id is a
// deterministic function of (source, content); adding the same pair
// twice is a no-op with AlreadyExisted set.
func (c *Client) AddDocument(ctx context.Context, content, source, title, docType string, metadata map[string]any) (res AddResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_document", start, err) }()

	out, err := c.kbSvc.Ingest(ctx, c.apiKey, kbuc.IngestInput{
		Content:  content,
		Source:   source,
		Title:    title,
		DocType:  docType,
		Metadata: metadata,
	})
	if err != nil {
		return AddResult{}, fmt.Errorf("add document: %w", err)
	}
	return AddResult{ID: out.ID, AlreadyExisted: out.AlreadyExisted}, nil
}

// AddFinding stores one research finding under a research run.
func (c *Client) AddFinding(ctx context.Context, topic, subtopic, findings, researchID string) (res AddResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_finding", start, err) }()

	out, err := c.kbSvc.IngestFinding(ctx, c.apiKey, topic, subtopic, findings, researchID)
	if err != nil {
		return AddResult{}, fmt.Errorf("add finding: %w", err)
	}
	return AddResult{ID: out.ID, AlreadyExisted: out.AlreadyExisted}, nil
}

// AddReport stores a completed research report.
func (c *Client) AddReport(ctx context.Context, topic, report, researchID string) (res AddResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("add_report", start, err) }()

	out, err := c.kbSvc.IngestReport(ctx, c.apiKey, topic, report, researchID)
	if err != nil {
		return AddResult{}, fmt.Errorf("add report: %w", err)
	}
	return AddResult{ID: out.ID, AlreadyExisted: out.AlreadyExisted}, nil
}

// Documents lists stored documents, up to limit.
func (c *Client) Documents(ctx context.Context, limit int) (docs []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("documents", start, err) }()

	stored, err := c.kbSvc.Documents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs = make([]Document, 0, len(stored))
	for _, d := range stored {
		docs = append(docs, Document{ID: d.ID, Content: d.Content, Metadata: d.Metadata})
	}
	return docs, nil
}

// DeleteDocument removes a document. Deleting an absent id succeeds.
func (c *Client) DeleteDocument(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_document", start, err) }()

	if err = c.kbSvc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Clear removes every document.
func (c *Client) Clear(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("clear", start, err) }()

	if err = c.kbSvc.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Stats returns knowledge-base statistics.
func (c *Client) Stats(ctx context.Context) (stats Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	out, err := c.kbSvc.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return Stats{TotalDocuments: out.TotalDocuments, PersistDirectory: out.PersistDirectory}, nil
}
