package redis

import (
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// NewStoreForTest creates a Store over the provided rueidis client
// without connecting or creating the index (test-only).
func NewStoreForTest(c rueidis.Client, cfg Config) *Store {
	return &Store{client: c, cfg: cfg, logger: zap.NewNop()}
}
