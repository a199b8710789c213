package inkbase

// Intent selects the embedding task type.
type Intent string

const (
	// IntentDocument embeds text for storage.
	IntentDocument Intent = "retrieval_document"
	// IntentQuery embeds text for searching.
	IntentQuery Intent = "retrieval_query"
)

// Document is a stored knowledge-base entry.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// AddResult reports an ingestion outcome.
type AddResult struct {
	ID             string
	AlreadyExisted bool
}

// QueryResult is one retrieval hit. Relevance is 1 - Distance.
type QueryResult struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Distance  float64
	Relevance float64
}

// ChatSource attributes part of a chat answer to a stored note.
type ChatSource struct {
	ID        string
	Title     string
	Relevance float64
}

// ChatResult is a grounded chat answer.
type ChatResult struct {
	Response    string
	ContextUsed int
	Sources     []ChatSource
}

// Stats describes the knowledge base.
type Stats struct {
	TotalDocuments   int
	PersistDirectory string
}

// GenerateResult is a priced completion.
type GenerateResult struct {
	Provider string
	Model    string
	Content  string
	Cost     int
}
