// Package domain holds the core knowledge-base model shared by all layers.
package domain

import "unicode/utf8"

// Metadata keys always present on stored documents. Caller-supplied
// metadata wins over the computed values on key collision.
const (
	MetaSource        = "source"
	MetaTitle         = "title"
	MetaDocType       = "doc_type"
	MetaContentLength = "content_length"
)

// DefaultDocType is assigned when the caller does not specify one.
const DefaultDocType = "research"

// Document is a stored knowledge-base entry.
type Document struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]any
}

// Title returns the document title, or "Untitled" when absent.
func (d Document) Title() string {
	if t, ok := d.Metadata[MetaTitle].(string); ok && t != "" {
		return t
	}
	return "Untitled"
}

// DocType returns the document type metadata field.
func (d Document) DocType() string {
	t, _ := d.Metadata[MetaDocType].(string)
	return t
}

// QueryResult is a retrieval hit.
// Relevance is 1 - Distance, unclamped: cosine distance keeps it in
// [-1, 1] and anti-correlated vectors can yield negative values.
type QueryResult struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Distance  float64
	Relevance float64
}

// BuildMetadata assembles the stored metadata for a document:
// the computed source/title/doc_type/content_length fields overlaid
// by whatever the caller supplied.
func BuildMetadata(source, title, docType, content string, extra map[string]any) map[string]any {
	if docType == "" {
		docType = DefaultDocType
	}
	meta := map[string]any{
		MetaSource:        source,
		MetaTitle:         title,
		MetaDocType:       docType,
		MetaContentLength: utf8.RuneCountInString(content),
	}
	for k, v := range extra {
		meta[k] = v
	}
	return meta
}
