package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"github.com/BlockSavvy/jetstream-sub001/engine/semantic"
)

type stubEncoder struct {
	vec  []float32
	errs map[string]error
}

func (s *stubEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	if err, ok := s.errs[text]; ok {
		return nil, err
	}
	return s.vec, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerIndexesJob(t *testing.T) {
	store := semantic.NewMemoryStore()
	w := NewWorker(&stubEncoder{vec: []float32{1, 0}}, store, 8, quiet())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	err := w.Dispatch(context.Background(), IndexJob{
		Namespace: domain.NamespaceSimulations,
		ID:        "sim-1",
		Text:      "fill optimizer run",
	})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return store.Len(domain.NamespaceSimulations) == 1 })

	hits, err := store.Query(context.Background(), domain.NamespaceSimulations, []float32{1, 0}, 1, semantic.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "sim-1" {
		t.Fatalf("hits = %+v", hits)
	}
}

func TestWorkerSwallowsFailuresAndContinues(t *testing.T) {
	store := semantic.NewMemoryStore()
	enc := &stubEncoder{
		vec:  []float32{1, 0},
		errs: map[string]error{"poisoned": errors.New("provider down")},
	}
	w := NewWorker(enc, store, 8, quiet())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for _, job := range []IndexJob{
		{Namespace: domain.NamespaceSimulations, ID: "sim-bad", Text: "poisoned"},
		{Namespace: domain.NamespaceSimulations, ID: "sim-good", Text: "healthy run"},
	} {
		if err := w.Dispatch(context.Background(), job); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return store.Len(domain.NamespaceSimulations) == 1 })

	hits, err := store.Query(context.Background(), domain.NamespaceSimulations, []float32{1, 0}, 2, semantic.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "sim-good" {
		t.Fatalf("only the healthy job should be indexed: %+v", hits)
	}
}

func TestDispatchRejectsWhenFull(t *testing.T) {
	w := NewWorker(&stubEncoder{vec: []float32{1}}, semantic.NewMemoryStore(), 1, quiet())

	if err := w.Dispatch(context.Background(), IndexJob{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Dispatch(context.Background(), IndexJob{ID: "b"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	if w.Pending() != 1 {
		t.Fatalf("pending = %d", w.Pending())
	}
}
