package semantic

import (
	"context"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"github.com/BlockSavvy/jetstream-sub001/pkg/fn"
	"github.com/BlockSavvy/jetstream-sub001/pkg/resilience"
)

// GuardedStore wraps a Store with a circuit breaker, shielding callers from a
// flapping vector backend. Intended for the HTTP proxy store, where the
// network hop is the least reliable link.
type GuardedStore struct {
	inner   Store
	breaker *resilience.Breaker
}

var _ Store = (*GuardedStore)(nil)

// Guard wraps inner with the given breaker.
func Guard(inner Store, b *resilience.Breaker) *GuardedStore {
	return &GuardedStore{inner: inner, breaker: b}
}

// Upsert implements Store.
func (g *GuardedStore) Upsert(ctx context.Context, ns domain.Namespace, rec Record) error {
	return g.breaker.Call(ctx, func(ctx context.Context) error {
		return g.inner.Upsert(ctx, ns, rec)
	})
}

// Query implements Store.
func (g *GuardedStore) Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int, filter Filter) ([]SearchResult, error) {
	stage := resilience.BreakerStage(g.breaker, func(ctx context.Context, vector []float32) fn.Result[[]SearchResult] {
		return fn.FromPair(g.inner.Query(ctx, ns, vector, topK, filter))
	})
	return stage(ctx, vector).Unwrap()
}

// Delete implements Store.
func (g *GuardedStore) Delete(ctx context.Context, ns domain.Namespace, id string) error {
	return g.breaker.Call(ctx, func(ctx context.Context) error {
		return g.inner.Delete(ctx, ns, id)
	})
}
