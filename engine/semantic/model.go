// Package semantic persists and queries embedding vectors, partitioned by
// entity-type namespace. Three implementations honor the same Store contract:
// a Qdrant gRPC store, an HTTP proxy store, and an in-memory store.
package semantic

import (
	"context"
	"fmt"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// Record is a single vector to persist. Metadata values are strings; the
// vector database stores nothing richer.
type Record struct {
	ID     string            `json:"id"`
	Vector []float32         `json:"vector"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// SearchResult is a single nearest-neighbor hit.
type SearchResult struct {
	ID    string            `json:"id"`
	Score float32           `json:"score"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// Filter restricts a query to metadata equality and exclusion conditions.
type Filter struct {
	Match map[string]string `json:"match,omitempty"`
	Not   map[string]string `json:"not,omitempty"`
}

// Store is the vector persistence contract. Upsert overwrites an existing id
// entirely (no partial merge); Delete of a missing id is a no-op; an empty
// Query result is valid, not an error.
type Store interface {
	Upsert(ctx context.Context, ns domain.Namespace, rec Record) error
	Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int, filter Filter) ([]SearchResult, error)
	Delete(ctx context.Context, ns domain.Namespace, id string) error
}

// CoerceMeta converts arbitrary metadata values to the string form the
// vector database requires.
func CoerceMeta(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		switch tv := v.(type) {
		case string:
			out[k] = tv
		case fmt.Stringer:
			out[k] = tv.String()
		default:
			out[k] = fmt.Sprint(tv)
		}
	}
	return out
}
