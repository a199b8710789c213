// Package googleapi wraps the Google Custom Search and Books APIs
// behind the tool endpoints. Keys arrive per request; services are
// built per call.
package googleapi

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/metrics"
)

// MaxSearchResults is the Custom Search API per-request cap.
const MaxSearchResults = 10

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// SearchResponse is the result set plus search metadata.
type SearchResponse struct {
	Results      []SearchResult
	SearchTime   float64
	TotalResults string
}

// SearchClient calls the Google Custom Search API.
type SearchClient struct {
	endpoint string // test override, empty in production
	logger   *zap.Logger
}

// NewSearchClient creates a Custom Search client.
func NewSearchClient(logger *zap.Logger) *SearchClient {
	return &SearchClient{logger: logger}
}

// Search runs a web search. num is capped at MaxSearchResults.
func (c *SearchClient) Search(ctx context.Context, apiKey, engineID, query string, num int) (SearchResponse, error) {
	if apiKey == "" || engineID == "" {
		return SearchResponse{}, fmt.Errorf("web search: %w", domain.ErrMissingCredential)
	}
	if num <= 0 {
		num = 5
	}
	if num > MaxSearchResults {
		num = MaxSearchResults
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("create search service: %w: %w", domain.ErrUpstream, err)
	}

	resp, err := svc.Cse.List().Q(query).Cx(engineID).Num(int64(num)).Context(ctx).Do()
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("search", "error").Inc()
		return SearchResponse{}, fmt.Errorf("web search: %w: %w", domain.ErrUpstream, err)
	}
	metrics.ToolRequestsTotal.WithLabelValues("search", "success").Inc()

	out := SearchResponse{Results: make([]SearchResult, 0, len(resp.Items)), TotalResults: "0"}
	for _, item := range resp.Items {
		out.Results = append(out.Results, SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
			Source:  item.DisplayLink,
		})
	}
	if resp.SearchInformation != nil {
		out.SearchTime = resp.SearchInformation.SearchTime
		out.TotalResults = fmt.Sprint(resp.SearchInformation.TotalResults)
	}
	return out, nil
}
