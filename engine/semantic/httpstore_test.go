package semantic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// The proxy store must be substitutable for the direct store, so back it with
// a MemoryStore and exercise the same contract through HTTP round-trips.
func proxyServer(t *testing.T, backing Store) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		var req UpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := backing.Upsert(r.Context(), req.Namespace, req.Record); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/vectors/query", func(w http.ResponseWriter, r *http.Request) {
		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		matches, err := backing.Query(r.Context(), req.Namespace, req.Vector, req.TopK, req.Filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(QueryResponse{Matches: matches})
	})
	mux.HandleFunc("POST /api/vectors/delete", func(w http.ResponseWriter, r *http.Request) {
		var req DeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := backing.Delete(r.Context(), req.Namespace, req.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(mux)
}

func TestHTTPStore_RoundTrip(t *testing.T) {
	backing := NewMemoryStore()
	srv := proxyServer(t, backing)
	defer srv.Close()

	s := NewHTTPStore(srv.URL)
	ctx := context.Background()

	rec := Record{
		ID:     "offer-1",
		Vector: []float32{1, 0},
		Meta:   map[string]string{"departure": "NYC"},
	}
	if err := s.Upsert(ctx, domain.NamespaceOffers, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := s.Query(ctx, domain.NamespaceOffers, []float32{1, 0}, 3,
		Filter{Match: map[string]string{"departure": "NYC"}})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 || results[0].ID != "offer-1" {
		t.Fatalf("unexpected results: %+v", results)
	}

	if err := s.Delete(ctx, domain.NamespaceOffers, "offer-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if backing.Len(domain.NamespaceOffers) != 0 {
		t.Error("delete did not reach backing store")
	}

	// Empty result set is valid through the proxy too.
	results, err = s.Query(ctx, domain.NamespaceOffers, []float32{1, 0}, 3, Filter{})
	if err != nil {
		t.Fatalf("query after delete: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %+v", results)
	}
}

func TestHTTPStore_SurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "vector store unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL)
	err := s.Upsert(context.Background(), domain.NamespaceUsers, Record{ID: "x", Vector: []float32{1}})
	if err == nil {
		t.Fatal("expected error")
	}
}
