// Package embedding decorates the embedding gateway with a persistent
// cache so re-ingesting or re-querying identical text never pays for a
// second provider call.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/inkwell-ai/inkbase/internal/domain"
	"github.com/inkwell-ai/inkbase/internal/store"
)

const cacheKeyPrefix = "emb_cache:"

// kv is the consumer interface for the embedding cache.
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cached caches embeddings in the store's KV space.
type Cached struct {
	inner      domain.Embedder
	kv         kv
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewCached creates a caching decorator. cacheTotal is a counter vec
// with label "result" ("hit"/"miss"), passed explicitly from main.
func NewCached(inner domain.Embedder, kv kv, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cached {
	return &Cached{inner: inner, kv: kv, cacheTotal: cacheTotal, logger: logger}
}

// Embed returns a cached vector or calls the inner embedder. The key
// covers the intent: document and query vectors for the same text are
// distinct cache entries.
func (c *Cached) Embed(ctx context.Context, apiKey, text string, intent domain.Intent) ([]float32, error) {
	key := cacheKey(text, intent)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return vec, nil
	}
	c.incCache("miss")

	vec, err := c.inner.Embed(ctx, apiKey, text, intent)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}

	c.putToCache(ctx, key, vec)
	return vec, nil
}

func (c *Cached) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(text string, intent domain.Intent) string {
	h := sha256.Sum256([]byte(string(intent) + ":" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *Cached) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := store.BytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *Cached) putToCache(ctx context.Context, key string, vec []float32) {
	if err := c.kv.Set(ctx, key, store.VectorToBytes(vec)); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}
