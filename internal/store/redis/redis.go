// Package redis implements the document store on Redis 8+ via rueidis,
// with one FT index over the document hashes for KNN retrieval.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/store"
)

// Hash field names. The vector is packed little-endian FLOAT32; the
// full metadata rides along as a JSON blob so types survive the
// string-only hash round-trip. doc_type and source are duplicated as
// plain fields for TAG filtering.
const (
	fieldContent = "__content"
	fieldVector  = "__vector"
	fieldMeta    = "__meta"
	fieldDocType = "doc_type"
	fieldSource  = "source"

	// vectorAlias is the attribute name the index exposes for the vector
	// hash field. KNN clauses must address the alias; RediSearch then
	// reports the distance as __<alias>_score.
	vectorAlias      = "vector"
	fieldVectorScore = "__" + vectorAlias + "_score"
)

// indexedFields can be filtered server-side via FT.SEARCH TAG clauses.
var indexedFields = map[string]bool{fieldDocType: true, fieldSource: true}

// Config holds connection and index parameters.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	DB         int
	KeyPrefix  string
	Dimensions int
	HNSWM      int
	HNSWEF     int
}

// Store implements store.Store on Redis.
type Store struct {
	client rueidis.Client
	cfg    Config
	logger *zap.Logger
}

// New connects to Redis and ensures the document index exists.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s := &Store{client: client, cfg: cfg, logger: logger}
	if err := s.ensureIndex(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) docKey(id string) string {
	return s.cfg.KeyPrefix + "doc:" + id
}

func (s *Store) docKeyPrefix() string {
	return s.cfg.KeyPrefix + "doc:"
}

func (s *Store) indexName() string {
	return s.cfg.KeyPrefix + "doc-index"
}

func (s *Store) ensureIndex(ctx context.Context) error {
	args := []string{
		s.indexName(),
		"ON", "HASH",
		"PREFIX", "1", s.docKeyPrefix(),
		"SCHEMA",
		fieldDocType, "TAG",
		fieldSource, "TAG",
		fieldVector, "AS", vectorAlias, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", fmt.Sprint(s.cfg.Dimensions),
		"DISTANCE_METRIC", "COSINE",
		"M", fmt.Sprint(s.cfg.HNSWM),
		"EF_CONSTRUCTION", fmt.Sprint(s.cfg.HNSWEF),
	}

	cmd := s.client.B().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return fmt.Errorf("create document index: %w", err)
	}
	return nil
}

// UpsertIfAbsent stores the document unless its id already exists.
func (s *Store) UpsertIfAbsent(ctx context.Context, doc domain.Document) (bool, error) {
	if len(doc.Embedding) != s.cfg.Dimensions {
		return false, fmt.Errorf("vector dimension mismatch: got %d, index has %d", len(doc.Embedding), s.cfg.Dimensions)
	}

	exists, err := s.Exists(ctx, doc.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return false, fmt.Errorf("marshal metadata: %w", err)
	}

	cmd := s.client.B().Hset().Key(s.docKey(doc.ID)).FieldValue().
		FieldValue(fieldContent, doc.Content).
		FieldValue(fieldVector, string(store.VectorToBytes(doc.Embedding))).
		FieldValue(fieldMeta, string(meta)).
		FieldValue(fieldDocType, metaString(doc.Metadata, fieldDocType)).
		FieldValue(fieldSource, metaString(doc.Metadata, fieldSource)).
		Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return false, fmt.Errorf("store document %s: %w", doc.ID, err)
	}
	return true, nil
}

// Exists checks if the document id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	cmd := s.client.B().Exists().Key(s.docKey(id)).Build()
	count, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", id, err)
	}
	return count > 0, nil
}

// Delete removes the document. Absent ids are a no-op (DEL semantics).
func (s *Store) Delete(ctx context.Context, id string) error {
	cmd := s.client.B().Del().Key(s.docKey(id)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Reset deletes every document hash. The embedding cache and the index
// definition survive.
func (s *Store) Reset(ctx context.Context) error {
	keys, err := s.scan(ctx, s.docKeyPrefix()+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.client.B().Del().Key(key).Build()
	}
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("delete key %s: %w", keys[i], err)
		}
	}
	return nil
}

// Location returns the first Redis address.
func (s *Store) Location() string {
	return "redis://" + strings.Join(s.cfg.Addrs, ",")
}

// Get reads a raw KV entry under the configured key prefix.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.client.B().Get().Key(s.cfg.KeyPrefix + key).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, store.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Set writes a raw KV entry under the configured key prefix.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(s.cfg.KeyPrefix + key).Value(string(value)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

func (s *Store) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", pattern, err)
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
