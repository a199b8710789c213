// Package store defines the content-addressed document store contract
// implemented by the badger and redis drivers.
package store

import (
	"context"

	"github.com/inkwell-ai/inkbase/internal/domain"
)

// Filter is an equality filter over document metadata. Drivers match
// each key against the stringified metadata value.
type Filter map[string]string

// Match is a KNN hit. Distance is the raw cosine distance (0 identical,
// 1 orthogonal, 2 opposite); relevance mapping happens above the store.
type Match struct {
	Doc      domain.Document
	Distance float64
}

// Store persists documents keyed by their content-addressed id.
//
// Query returns up to k matches nearest-first by ascending distance;
// fewer than k hits and an empty result are both success. Delete on an
// absent id is a no-op. The KV methods expose a small side namespace
// (the embedding cache lives there).
type Store interface {
	UpsertIfAbsent(ctx context.Context, doc domain.Document) (inserted bool, err error)
	Exists(ctx context.Context, id string) (bool, error)
	Query(ctx context.Context, vector []float32, k int, filter Filter) ([]Match, error)
	List(ctx context.Context, limit int) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)

	// Location describes where the data lives (directory or address),
	// reported by the stats endpoint.
	Location() string

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	Ping(ctx context.Context) error
	Close()
}
