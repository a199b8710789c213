package inkbase

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string, _ Intent) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

type fakeGenerator struct {
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	f.lastPrompt = prompt
	return "grounded answer", nil
}

func newTestClient(t *testing.T) (*Client, *fakeGenerator) {
	t.Helper()

	gen := &fakeGenerator{}
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"Goroutines are multiplexed onto OS threads.": {1, 0, 0},
		"Bread rises because of yeast.":               {0, 1, 0},
		"what are goroutines":                         {0.9, 0.1, 0},
	}}

	c, err := New(context.Background(),
		WithBadger(t.TempDir()),
		WithGeminiKey("test-key"),
		WithEmbedder(emb),
		WithGenerator(gen),
		WithPrometheus(prometheus.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c, gen
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), WithBadger(t.TempDir()))
	if err == nil {
		t.Fatal("expected error without API key or custom gateways")
	}
}

func TestAddQueryChatRoundTrip(t *testing.T) {
	c, gen := newTestClient(t)
	ctx := context.Background()

	res, err := c.AddDocument(ctx, "Goroutines are multiplexed onto OS threads.", "notes/go.md", "Go Scheduler", "", nil)
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if res.AlreadyExisted {
		t.Error("fresh document reported as existing")
	}

	again, err := c.AddDocument(ctx, "Goroutines are multiplexed onto OS threads.", "notes/go.md", "Go Scheduler", "", nil)
	if err != nil {
		t.Fatalf("AddDocument again: %v", err)
	}
	if !again.AlreadyExisted || again.ID != res.ID {
		t.Errorf("repeat add = %+v, want AlreadyExisted with id %s", again, res.ID)
	}

	if _, err := c.AddDocument(ctx, "Bread rises because of yeast.", "notes/bread.md", "Bread", "", nil); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	hits, err := c.Query(ctx, "what are goroutines", 1, "")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 || !strings.Contains(hits[0].Content, "Goroutines") {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Relevance != 1-hits[0].Distance {
		t.Errorf("relevance %v inconsistent with distance %v", hits[0].Relevance, hits[0].Distance)
	}

	chat, err := c.Chat(ctx, "what are goroutines", 2)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if chat.Response != "grounded answer" {
		t.Errorf("response = %q", chat.Response)
	}
	if chat.ContextUsed == 0 || len(chat.Sources) == 0 {
		t.Errorf("chat grounding missing: %+v", chat)
	}
	if !strings.Contains(gen.lastPrompt, "### Go Scheduler") {
		t.Errorf("prompt missing note block:\n%s", gen.lastPrompt)
	}
}

func TestFindingsAndReports(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := c.AddFinding(ctx, "Distributed Systems", "Consensus", "Raft elects a leader per term.", "run-1"); err != nil {
		t.Fatalf("AddFinding: %v", err)
	}
	if _, err := c.AddReport(ctx, "Distributed Systems", "Full report text.", "run-1"); err != nil {
		t.Fatalf("AddReport: %v", err)
	}

	docs, err := c.Documents(ctx, 10)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}

	types := map[any]bool{}
	for _, d := range docs {
		types[d.Metadata["doc_type"]] = true
	}
	if !types["research_finding"] || !types["research_report"] {
		t.Errorf("doc types = %v", types)
	}
}

func TestDeleteClearStats(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	res, err := c.AddDocument(ctx, "Goroutines are multiplexed onto OS threads.", "notes/go.md", "Go Scheduler", "", nil)
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalDocuments != 1 || stats.PersistDirectory == "" {
		t.Errorf("stats = %+v", stats)
	}

	if err := c.DeleteDocument(ctx, res.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	// Absent id is still success.
	if err := c.DeleteDocument(ctx, res.ID); err != nil {
		t.Fatalf("repeat DeleteDocument: %v", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	stats, err = c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalDocuments != 0 {
		t.Errorf("stats after clear = %+v", stats)
	}
}

func TestGenerateUsesPricing(t *testing.T) {
	c, _ := newTestClient(t)

	out, err := c.Generate(context.Background(), "gemini-2.5-pro", "write a haiku")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Provider != "gemini" || out.Model != "gemini-2.5-pro" {
		t.Errorf("out = %+v", out)
	}
	if out.Cost != 15 {
		t.Errorf("cost = %d, want 15", out.Cost)
	}
	if out.Content != "grounded answer" {
		t.Errorf("content = %q", out.Content)
	}
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
