package googleapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
)

func TestSearchRequiresCredentials(t *testing.T) {
	c := NewSearchClient(zap.NewNop())
	ctx := context.Background()

	if _, err := c.Search(ctx, "", "engine", "q", 5); !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("missing key: err = %v, want ErrMissingCredential", err)
	}
	if _, err := c.Search(ctx, "key", "", "q", 5); !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("missing engine id: err = %v, want ErrMissingCredential", err)
	}
}

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "go testing" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("cx") != "engine-1" {
			t.Errorf("cx = %q", q.Get("cx"))
		}
		if q.Get("num") != "10" {
			t.Errorf("num = %q, want capped at 10", q.Get("num"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"title": "Result A", "link": "https://a.example", "snippet": "first", "displayLink": "a.example"},
				{"title": "Result B", "link": "https://b.example", "snippet": "second", "displayLink": "b.example"}
			],
			"searchInformation": {"searchTime": 0.23, "totalResults": "1200"}
		}`))
	}))
	defer srv.Close()

	c := &SearchClient{endpoint: srv.URL, logger: zap.NewNop()}
	resp, err := c.Search(context.Background(), "key", "engine-1", "go testing", 25)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results", len(resp.Results))
	}
	if resp.Results[0].Title != "Result A" || resp.Results[0].Source != "a.example" {
		t.Errorf("first result = %+v", resp.Results[0])
	}
	if resp.SearchTime != 0.23 {
		t.Errorf("search time = %v", resp.SearchTime)
	}
	if resp.TotalResults != "1200" {
		t.Errorf("total results = %q", resp.TotalResults)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	c := &SearchClient{endpoint: srv.URL, logger: zap.NewNop()}
	_, err := c.Search(context.Background(), "key", "engine", "q", 5)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestBooksRequiresKey(t *testing.T) {
	c := NewBooksClient(zap.NewNop())
	if _, err := c.Search(context.Background(), "", "golang", 5); !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
}

func TestBooksParsesVolumes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "golang" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("printType") != "books" {
			t.Errorf("printType = %q", q.Get("printType"))
		}
		if q.Get("maxResults") != "3" {
			t.Errorf("maxResults = %q", q.Get("maxResults"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"volumeInfo": {
					"title": "The Go Programming Language",
					"authors": ["Alan Donovan", "Brian Kernighan"],
					"publishedDate": "2015",
					"description": "` + strings.Repeat("x", 600) + `",
					"infoLink": "https://books.example/go"
				}},
				{"volumeInfo": {"title": "Short", "description": "brief"}}
			]
		}`))
	}))
	defer srv.Close()

	c := &BooksClient{endpoint: srv.URL, logger: zap.NewNop()}
	results, err := c.Search(context.Background(), "key", "golang", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	first := results[0]
	if first.Title != "The Go Programming Language" || len(first.Authors) != 2 {
		t.Errorf("first = %+v", first)
	}
	if len([]rune(first.Description)) != descriptionLimit+3 || !strings.HasSuffix(first.Description, "...") {
		t.Errorf("long description not truncated: len=%d", len(first.Description))
	}
	if results[1].Description != "brief" {
		t.Errorf("short description changed: %q", results[1].Description)
	}
}

func TestTruncateDescription(t *testing.T) {
	if got := truncateDescription("short"); got != "short" {
		t.Errorf("short description changed: %q", got)
	}
	long := strings.Repeat("é", descriptionLimit+1)
	got := truncateDescription(long)
	if []rune(got)[0] != 'é' || len([]rune(got)) != descriptionLimit+3 {
		t.Errorf("rune truncation wrong: len=%d", len([]rune(got)))
	}
}
