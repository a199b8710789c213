package badger

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func doc(id string, vec []float32, docType string) domain.Document {
	return domain.Document{
		ID:        id,
		Content:   "content of " + id,
		Embedding: vec,
		Metadata:  map[string]any{"title": "Doc " + id, "doc_type": docType},
	}
}

func TestUpsertIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, err := s.UpsertIfAbsent(ctx, doc("a", []float32{1, 0}, "research"))
	if err != nil {
		t.Fatalf("UpsertIfAbsent: %v", err)
	}
	if !inserted {
		t.Fatal("first upsert should insert")
	}

	inserted, err = s.UpsertIfAbsent(ctx, doc("a", []float32{0, 1}, "research"))
	if err != nil {
		t.Fatalf("UpsertIfAbsent duplicate: %v", err)
	}
	if inserted {
		t.Fatal("second upsert of same id should be a no-op")
	}

	exists, err := s.Exists(ctx, "a")
	if err != nil || !exists {
		t.Fatalf("Exists(a) = %v, %v; want true, nil", exists, err)
	}
	exists, err = s.Exists(ctx, "missing")
	if err != nil || exists {
		t.Fatalf("Exists(missing) = %v, %v; want false, nil", exists, err)
	}
}

func TestQueryOrdersByDistance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []domain.Document{
		doc("near", []float32{1, 0}, "research"),
		doc("mid", []float32{1, 1}, "research"),
		doc("far", []float32{-1, 0}, "research"),
	}
	for _, d := range seed {
		if _, err := s.UpsertIfAbsent(ctx, d); err != nil {
			t.Fatalf("seed %s: %v", d.ID, err)
		}
	}

	matches, err := s.Query(ctx, []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Doc.ID != "near" || matches[1].Doc.ID != "mid" {
		t.Errorf("order = %s, %s; want near, mid", matches[0].Doc.ID, matches[1].Doc.ID)
	}
	if matches[0].Distance > matches[1].Distance {
		t.Error("matches not sorted by ascending distance")
	}
}

func TestQueryFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.UpsertIfAbsent(ctx, doc("f1", []float32{1, 0}, "research_finding")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertIfAbsent(ctx, doc("r1", []float32{1, 0}, "research_report")); err != nil {
		t.Fatal(err)
	}

	matches, err := s.Query(ctx, []float32{1, 0}, 10, store.Filter{"doc_type": "research_finding"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].Doc.ID != "f1" {
		t.Fatalf("filter returned %+v, want only f1", matches)
	}
}

func TestQueryEmptyStore(t *testing.T) {
	s := newTestStore(t)
	matches, err := s.Query(context.Background(), []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Query on empty store: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches from empty store", len(matches))
	}
}

func TestListLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.UpsertIfAbsent(ctx, doc(id, []float32{1, 0}, "research")); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d docs, want 3", len(all))
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("Delete absent id: %v", err)
	}

	if _, err := s.UpsertIfAbsent(ctx, doc("a", []float32{1, 0}, "research")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, err := s.Exists(ctx, "a")
	if err != nil || exists {
		t.Fatalf("document survived delete: %v, %v", exists, err)
	}
}

func TestResetKeepsKV(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.UpsertIfAbsent(ctx, doc("a", []float32{1, 0}, "research")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "emb_cache:k", []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil || count != 0 {
		t.Fatalf("Count after reset = %d, %v; want 0, nil", count, err)
	}
	if _, err := s.Get(ctx, "emb_cache:k"); err != nil {
		t.Fatalf("cache entry should survive reset: %v", err)
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, store.ErrKeyNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrKeyNotFound", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := New(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.UpsertIfAbsent(ctx, doc("a", []float32{1, 0}, "research")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := New(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	exists, err := reopened.Exists(ctx, "a")
	if err != nil || !exists {
		t.Fatalf("document lost across reopen: %v, %v", exists, err)
	}
	if reopened.Location() != dir {
		t.Errorf("Location = %q, want %q", reopened.Location(), dir)
	}
}
