package googleapi

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/books/v1"
	"google.golang.org/api/option"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/metrics"
)

// MaxBookResults is the Books API per-request cap this service allows.
const MaxBookResults = 10

// descriptionLimit bounds book descriptions in responses.
const descriptionLimit = 500

// BookResult is one Books API hit.
type BookResult struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
	Link          string   `json:"link"`
}

// BooksClient calls the Google Books API.
type BooksClient struct {
	endpoint string // test override, empty in production
	logger   *zap.Logger
}

// NewBooksClient creates a Books client.
func NewBooksClient(logger *zap.Logger) *BooksClient {
	return &BooksClient{logger: logger}
}

// Search looks up printed books. maxResults is capped at MaxBookResults.
func (c *BooksClient) Search(ctx context.Context, apiKey, query string, maxResults int) ([]BookResult, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("book search: %w", domain.ErrMissingCredential)
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxResults > MaxBookResults {
		maxResults = MaxBookResults
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create books service: %w: %w", domain.ErrUpstream, err)
	}

	resp, err := svc.Volumes.List(query).MaxResults(int64(maxResults)).PrintType("books").Context(ctx).Do()
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("books", "error").Inc()
		return nil, fmt.Errorf("book search: %w: %w", domain.ErrUpstream, err)
	}
	metrics.ToolRequestsTotal.WithLabelValues("books", "success").Inc()

	results := make([]BookResult, 0, len(resp.Items))
	for _, vol := range resp.Items {
		info := vol.VolumeInfo
		if info == nil {
			continue
		}
		results = append(results, BookResult{
			Title:         info.Title,
			Authors:       info.Authors,
			PublishedDate: info.PublishedDate,
			Description:   truncateDescription(info.Description),
			Link:          info.InfoLink,
		})
	}
	return results, nil
}

// truncateDescription bounds a description to descriptionLimit runes
// with a trailing ellipsis, mirroring what the desktop frontend expects.
func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= descriptionLimit {
		return s
	}
	return string(runes[:descriptionLimit]) + "..."
}
