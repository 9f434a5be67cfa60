package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// Wire shapes shared between HTTPStore and the API routes that serve it.
type (
	// UpsertRequest is the body of POST /api/vectors/upsert.
	UpsertRequest struct {
		Namespace domain.Namespace `json:"namespace"`
		Record    Record           `json:"record"`
	}

	// QueryRequest is the body of POST /api/vectors/query.
	QueryRequest struct {
		Namespace domain.Namespace `json:"namespace"`
		Vector    []float32        `json:"vector"`
		TopK      int              `json:"top_k"`
		Filter    Filter           `json:"filter"`
	}

	// QueryResponse is the response of POST /api/vectors/query.
	QueryResponse struct {
		Matches []SearchResult `json:"matches"`
	}

	// DeleteRequest is the body of POST /api/vectors/delete.
	DeleteRequest struct {
		Namespace domain.Namespace `json:"namespace"`
		ID        string           `json:"id"`
	}
)

// HTTPStore proxies Store operations through the service's /api/vectors
// routes. It exists for execution contexts without direct database access and
// honors the same contract as QdrantStore.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

var _ Store = (*HTTPStore)(nil)

// NewHTTPStore creates an HTTPStore targeting baseURL (no trailing slash).
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Upsert implements Store.
func (s *HTTPStore) Upsert(ctx context.Context, ns domain.Namespace, rec Record) error {
	return s.post(ctx, "/api/vectors/upsert", UpsertRequest{Namespace: ns, Record: rec}, nil)
}

// Query implements Store.
func (s *HTTPStore) Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int, filter Filter) ([]SearchResult, error) {
	var resp QueryResponse
	err := s.post(ctx, "/api/vectors/query", QueryRequest{
		Namespace: ns,
		Vector:    vector,
		TopK:      topK,
		Filter:    filter,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Delete implements Store.
func (s *HTTPStore) Delete(ctx context.Context, ns domain.Namespace, id string) error {
	return s.post(ctx, "/api/vectors/delete", DeleteRequest{Namespace: ns, ID: id}, nil)
}

func (s *HTTPStore) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("semantic: marshal %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("semantic: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("semantic: %s: status %d: %s", path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("semantic: decode %s: %w", path, err)
	}
	return nil
}
