package semantic

import (
	"context"
	"fmt"
	"sync"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// pointsAPI is the minimal surface needed from qdrant's points client.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Delete(ctx context.Context, in *pb.DeletePoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

// collectionsAPI is the minimal surface needed from qdrant's collections client.
type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// QdrantStore is the sole owner of all Qdrant operations. Each namespace maps
// to its own collection so the one-vector-per-id-per-namespace invariant is a
// plain point-id overwrite.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	prefix      string
	dims        int

	mu      sync.Mutex
	ensured map[domain.Namespace]bool
}

var _ Store = (*QdrantStore)(nil)

// NewQdrant creates a QdrantStore connected to Qdrant at the given gRPC
// address. dims fixes the vector dimensionality for every namespace; writes
// and queries of any other length are rejected.
func NewQdrant(addr, prefix string, dims int) (*QdrantStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &QdrantStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		prefix:      prefix,
		dims:        dims,
		ensured:     make(map[domain.Namespace]bool),
	}, nil
}

// NewQdrantWithClients creates a QdrantStore with explicit gRPC clients.
func NewQdrantWithClients(points pointsAPI, collections collectionsAPI, prefix string, dims int) *QdrantStore {
	return &QdrantStore{
		points:      points,
		collections: collections,
		prefix:      prefix,
		dims:        dims,
		ensured:     make(map[domain.Namespace]bool),
	}
}

// Close closes the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *QdrantStore) collection(ns domain.Namespace) string {
	return s.prefix + "_" + string(ns)
}

func (s *QdrantStore) checkDims(vector []float32) error {
	if s.dims > 0 && len(vector) != s.dims {
		return fmt.Errorf("semantic: vector has %d dims, store fixed at %d: %w",
			len(vector), s.dims, domain.ErrDimensionMismatch)
	}
	return nil
}

// EnsureNamespace creates the namespace's collection if it doesn't exist.
func (s *QdrantStore) EnsureNamespace(ctx context.Context, ns domain.Namespace) error {
	s.mu.Lock()
	done := s.ensured[ns]
	s.mu.Unlock()
	if done {
		return nil
	}

	name := s.collection(ns)
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	exists := false
	for _, c := range list.GetCollections() {
		if c.GetName() == name {
			exists = true
			break
		}
	}

	if !exists {
		d := uint64(s.dims)
		_, err = s.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: name,
			VectorsConfig: &pb.VectorsConfig{
				Config: &pb.VectorsConfig_Params{
					Params: &pb.VectorParams{
						Size:     d,
						Distance: pb.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("semantic: create collection %s: %w", name, err)
		}
	}

	s.mu.Lock()
	s.ensured[ns] = true
	s.mu.Unlock()
	return nil
}

// Upsert implements Store. A second call with the same id overwrites the
// prior vector and metadata entirely.
func (s *QdrantStore) Upsert(ctx context.Context, ns domain.Namespace, rec Record) error {
	if err := s.checkDims(rec.Vector); err != nil {
		return err
	}
	if err := s.EnsureNamespace(ctx, ns); err != nil {
		return err
	}

	payload := make(map[string]*pb.Value, len(rec.Meta))
	for k, v := range rec.Meta {
		payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection(ns),
		Wait:           &wait,
		Points: []*pb.PointStruct{{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: rec.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: rec.Vector},
				},
			},
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %s/%s: %w", ns, rec.ID, err)
	}
	return nil
}

// Query implements Store: approximate nearest-neighbor search within the
// namespace, optionally restricted by metadata filters.
func (s *QdrantStore) Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int, filter Filter) ([]SearchResult, error) {
	if err := s.checkDims(vector); err != nil {
		return nil, err
	}

	req := &pb.SearchPoints{
		CollectionName: s.collection(ns),
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}

	if len(filter.Match) > 0 || len(filter.Not) > 0 {
		f := &pb.Filter{}
		for k, v := range filter.Match {
			f.Must = append(f.Must, fieldMatch(k, v))
		}
		for k, v := range filter.Not {
			f.MustNot = append(f.MustNot, fieldMatch(k, v))
		}
		req.Filter = f
	}

	resp, err := s.points.Search(ctx, req)
	if status.Code(err) == codes.NotFound {
		// Namespace never written: no collection yet, so no matches.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("semantic: query %s: %w", ns, err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		sr := SearchResult{
			ID:    r.GetId().GetUuid(),
			Score: r.GetScore(),
			Meta:  make(map[string]string),
		}
		for k, val := range r.GetPayload() {
			sr.Meta[k] = val.GetStringValue()
		}
		results[i] = sr
	}
	return results, nil
}

// Delete implements Store. Deleting an id that was never upserted succeeds.
func (s *QdrantStore) Delete(ctx context.Context, ns domain.Namespace, id string) error {
	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection(ns),
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}},
				},
			},
		},
	})
	if status.Code(err) == codes.NotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("semantic: delete %s/%s: %w", ns, id, err)
	}
	return nil
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}
