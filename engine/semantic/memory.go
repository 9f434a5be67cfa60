package semantic

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// MemoryStore is an in-memory Store with exact cosine scoring. It backs tests
// and local runs where no Qdrant instance is available.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.Namespace]map[string]Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.Namespace]map[string]Record)}
}

// Upsert implements Store; overwrite-not-merge semantics.
func (s *MemoryStore) Upsert(_ context.Context, ns domain.Namespace, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[ns] == nil {
		s.records[ns] = make(map[string]Record)
	}
	vec := make([]float32, len(rec.Vector))
	copy(vec, rec.Vector)
	meta := make(map[string]string, len(rec.Meta))
	for k, v := range rec.Meta {
		meta[k] = v
	}
	s.records[ns][rec.ID] = Record{ID: rec.ID, Vector: vec, Meta: meta}
	return nil
}

// Query implements Store, scoring every record in the namespace by cosine
// similarity and returning the topK best that pass the filter.
func (s *MemoryStore) Query(_ context.Context, ns domain.Namespace, vector []float32, topK int, filter Filter) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []SearchResult
	for _, rec := range s.records[ns] {
		if !matchesFilter(rec.Meta, filter) {
			continue
		}
		results = append(results, SearchResult{
			ID:    rec.ID,
			Score: cosine(vector, rec.Vector),
			Meta:  rec.Meta,
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete implements Store; deleting a missing id is a no-op.
func (s *MemoryStore) Delete(_ context.Context, ns domain.Namespace, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records[ns], id)
	return nil
}

// Len returns the number of records in a namespace.
func (s *MemoryStore) Len(ns domain.Namespace) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[ns])
}

func matchesFilter(meta map[string]string, filter Filter) bool {
	for k, v := range filter.Match {
		if meta[k] != v {
			return false
		}
	}
	for k, v := range filter.Not {
		if meta[k] == v {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
