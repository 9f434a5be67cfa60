package matching

import (
	"context"
	"fmt"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"github.com/BlockSavvy/jetstream-sub001/engine/semantic"
	"github.com/BlockSavvy/jetstream-sub001/engine/textgen"
	"github.com/BlockSavvy/jetstream-sub001/pkg/fn"
)

// SyncProfile indexes a user profile into the users namespace.
func (s *Service) SyncProfile(ctx context.Context, p domain.EnrichedProfile) error {
	meta := map[string]string{"id": p.ID, "name": p.Name}
	if p.Industry != "" {
		meta["industry"] = p.Industry
	}
	return s.index(ctx, domain.NamespaceUsers, p.ID, textgen.Generate(textgen.ProfileEntity(&p)), meta)
}

// SyncFlight indexes a flight into the flights namespace.
func (s *Service) SyncFlight(ctx context.Context, f domain.Flight) error {
	meta := map[string]string{
		"id":          f.ID,
		"origin":      f.Origin,
		"destination": f.Destination,
		"status":      string(f.Status),
	}
	return s.index(ctx, domain.NamespaceFlights, f.ID, textgen.Generate(textgen.FlightEntity(&f)), meta)
}

// SyncOffer indexes a JetShare offer into the offers namespace.
func (s *Service) SyncOffer(ctx context.Context, o domain.JetShareOffer) error {
	meta := map[string]string{
		"id":        o.ID,
		"departure": o.Departure,
		"arrival":   o.Arrival,
		"status":    string(o.Status),
	}
	return s.index(ctx, domain.NamespaceOffers, o.ID, textgen.Generate(textgen.OfferEntity(&o)), meta)
}

// SyncCrew indexes a crew member into the crews namespace.
func (s *Service) SyncCrew(ctx context.Context, c domain.CrewMember) error {
	meta := map[string]string{"id": c.ID, "role": c.Role}
	return s.index(ctx, domain.NamespaceCrews, c.ID, textgen.Generate(textgen.CrewEntity(&c)), meta)
}

// Remove deletes an entity's vector. Removing an id that was never indexed
// is not an error.
func (s *Service) Remove(ctx context.Context, ns domain.Namespace, id string) error {
	if err := s.vectors.Delete(ctx, ns, id); err != nil {
		return fmt.Errorf("matching: remove %s/%s: %w", ns, id, err)
	}
	return nil
}

// index runs the embed-then-upsert pipeline that overwrites the entity's
// record, with a traced stage per hop.
func (s *Service) index(ctx context.Context, ns domain.Namespace, id, text string, meta map[string]string) error {
	if text == "" {
		return fmt.Errorf("matching: index %s/%s: empty text", ns, id)
	}

	encode := fn.TracedStage("matching.encode", func(ctx context.Context, text string) fn.Result[[]float32] {
		return fn.FromPair(s.enc.Encode(ctx, text))
	})
	toRecord := fn.MapStage(func(vector []float32) semantic.Record {
		return semantic.Record{ID: id, Vector: vector, Meta: meta}
	})
	upsert := fn.TracedStage("matching.upsert", func(ctx context.Context, rec semantic.Record) fn.Result[struct{}] {
		if err := s.vectors.Upsert(ctx, ns, rec); err != nil {
			return fn.Err[struct{}](err)
		}
		return fn.Ok(struct{}{})
	})

	pipeline := fn.Then(fn.Then(encode, toRecord), upsert)
	if _, err := pipeline(ctx, text).Unwrap(); err != nil {
		return fmt.Errorf("matching: index %s/%s: %w", ns, id, err)
	}
	s.logger.Debug("entity indexed", "namespace", ns, "id", id)
	return nil
}
