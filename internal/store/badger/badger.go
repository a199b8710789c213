// Package badger implements the document store on an embedded Badger
// database. It is the default driver: everything persists under a local
// directory and nearest-neighbour search is an exhaustive cosine scan,
// which is fine at personal-knowledge-base scale.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/store"
)

const docPrefix = "doc:"

// Store is a badger-backed document store.
type Store struct {
	db     *badger.DB
	dir    string
	logger *zap.Logger
}

type record struct {
	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata"`
}

// New opens (or creates) the store directory. A leading "~/" in dir is
// expanded against the user home directory.
func New(dir string, logger *zap.Logger) (*Store, error) {
	dir, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(newBadgerLogger(logger))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}

	return &Store{db: db, dir: dir, logger: logger}, nil
}

func expandHome(dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(dir, "~")), nil
	}
	return dir, nil
}

// UpsertIfAbsent stores the document unless its id already exists.
func (s *Store) UpsertIfAbsent(_ context.Context, doc domain.Document) (bool, error) {
	inserted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(docPrefix + doc.ID)
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		data, err := json.Marshal(record{
			Content:   doc.Content,
			Embedding: doc.Embedding,
			Metadata:  doc.Metadata,
		})
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		inserted = true
		return txn.Set(key, data)
	})
	if err != nil {
		return false, fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return inserted, nil
}

// Exists reports whether the id is stored.
func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(docPrefix + id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", id, err)
	}
	return exists, nil
}

// Query scans every stored document, filters on metadata equality and
// returns the k nearest by cosine distance.
func (s *Store) Query(_ context.Context, vector []float32, k int, filter store.Filter) ([]store.Match, error) {
	if k <= 0 {
		return nil, nil
	}

	var matches []store.Match
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), docPrefix)

			var rec record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode document %s: %w", id, err)
			}
			if !matchesFilter(rec.Metadata, filter) {
				continue
			}

			matches = append(matches, store.Match{
				Doc: domain.Document{
					ID:        id,
					Content:   rec.Content,
					Embedding: rec.Embedding,
					Metadata:  rec.Metadata,
				},
				Distance: store.CosineDistance(vector, rec.Embedding),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// List returns up to limit documents in key order. limit <= 0 lists all.
func (s *Store) List(_ context.Context, limit int) ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(docs) >= limit {
				break
			}
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), docPrefix)

			var rec record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode document %s: %w", id, err)
			}
			docs = append(docs, domain.Document{
				ID:       id,
				Content:  rec.Content,
				Metadata: rec.Metadata,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes the document. Absent ids are a no-op.
func (s *Store) Delete(_ context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(docPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Reset removes every document. The KV namespace (embedding cache)
// survives so re-ingesting cleared content stays cheap.
func (s *Store) Reset(_ context.Context) error {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("collect document keys: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// Location returns the store directory.
func (s *Store) Location() string { return s.dir }

// Get reads a raw KV entry.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return store.ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set writes a raw KV entry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Ping reports whether the database is usable.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("badger store is closed")
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("Failed to close badger store", zap.Error(err))
	}
}

func matchesFilter(meta map[string]any, filter store.Filter) bool {
	for key, want := range filter {
		got, ok := meta[key]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}
