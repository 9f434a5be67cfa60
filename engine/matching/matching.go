// Package matching orchestrates semantic matching: it embeds a query built
// from the user's profile and criteria, searches the vector store, hydrates
// candidates from the relational store, and ranks them with human-readable
// reasons attached.
package matching

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"github.com/BlockSavvy/jetstream-sub001/engine/semantic"
	"github.com/BlockSavvy/jetstream-sub001/engine/textgen"
	"github.com/BlockSavvy/jetstream-sub001/pkg/fn"
	"github.com/BlockSavvy/jetstream-sub001/pkg/metrics"
)

// Encoder abstracts the embedding client.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// ProfileReader loads enriched user profiles.
type ProfileReader interface {
	GetEnriched(ctx context.Context, id string) (domain.EnrichedProfile, error)
}

// FlightReader hydrates flight candidates.
type FlightReader interface {
	Get(ctx context.Context, id string) (domain.Flight, error)
}

// OfferReader hydrates offer candidates.
type OfferReader interface {
	Get(ctx context.Context, id string) (domain.JetShareOffer, error)
}

// Criteria narrows a match request beyond the user's stored preferences.
type Criteria struct {
	UserID      string    `json:"user_id"`
	Destination string    `json:"destination,omitempty"`
	DateFrom    time.Time `json:"date_from,omitempty"`
	DateTo      time.Time `json:"date_to,omitempty"`
	TripPurpose string    `json:"trip_purpose,omitempty"`
	MinSeats    int       `json:"min_seats,omitempty"`
	Limit       int       `json:"limit,omitempty"`
}

// DefaultLimit applies when Criteria.Limit is unset.
const DefaultLimit = 10

// hydrateWorkers bounds concurrent relational lookups per match request.
const hydrateWorkers = 4

func (c Criteria) limit() int {
	if c.Limit <= 0 {
		return DefaultLimit
	}
	return c.Limit
}

// FlightMatch is one ranked flight candidate.
type FlightMatch struct {
	Flight  domain.Flight `json:"flight"`
	Score   float32       `json:"score"`
	Reasons []string      `json:"reasons"`
}

// CompanionMatch is one ranked travel-companion candidate.
type CompanionMatch struct {
	Profile domain.EnrichedProfile `json:"profile"`
	Score   float32                `json:"score"`
	Reasons []string               `json:"reasons"`
}

// OfferMatch is one ranked JetShare offer candidate.
type OfferMatch struct {
	Offer   domain.JetShareOffer `json:"offer"`
	Score   float32              `json:"score"`
	Reasons []string             `json:"reasons"`
}

// MatchSet is the result envelope of one matching flow. Dropped counts
// candidates the vector store returned but the relational store could not
// hydrate; they are skipped, not fatal.
type MatchSet[T any] struct {
	Matches []T `json:"matches"`
	Dropped int `json:"dropped"`
}

// AllMatches holds the outcome of the combined flow. Each branch settles
// independently; one failing leaves the other's results intact.
type AllMatches struct {
	Flights       MatchSet[FlightMatch]    `json:"flights"`
	FlightsErr    error                    `json:"-"`
	Companions    MatchSet[CompanionMatch] `json:"companions"`
	CompanionsErr error                    `json:"-"`
}

// Service runs the matching pipelines.
type Service struct {
	enc      Encoder
	vectors  semantic.Store
	profiles ProfileReader
	flights  FlightReader
	offers   OfferReader
	logger   *slog.Logger

	matchesTotal *metrics.Counter
	droppedTotal *metrics.Counter
}

// New creates a matching Service. The registry may be nil.
func New(enc Encoder, vectors semantic.Store, profiles ProfileReader, flights FlightReader, offers OfferReader, logger *slog.Logger, reg *metrics.Registry) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		enc:      enc,
		vectors:  vectors,
		profiles: profiles,
		flights:  flights,
		offers:   offers,
		logger:   logger,
	}
	if reg != nil {
		s.matchesTotal = reg.Counter("matching_requests_total", "matching requests served")
		s.droppedTotal = reg.Counter("matching_candidates_dropped_total", "candidates that failed hydration")
	}
	return s
}

// MatchFlights finds flights fitting the user's preferences and criteria.
func (s *Service) MatchFlights(ctx context.Context, crit Criteria) (MatchSet[FlightMatch], error) {
	profile, vector, err := s.prepare(ctx, crit)
	if err != nil {
		return MatchSet[FlightMatch]{}, err
	}

	filter := semantic.Filter{Match: map[string]string{"status": string(domain.FlightScheduled)}}
	if crit.Destination != "" {
		filter.Match["destination"] = crit.Destination
	}

	hits, err := s.vectors.Query(ctx, domain.NamespaceFlights, vector, 2*crit.limit(), filter)
	if err != nil {
		return MatchSet[FlightMatch]{}, fmt.Errorf("matching: query flights: %w", err)
	}

	candidates := fn.ParMap(hits, hydrateWorkers, func(hit semantic.SearchResult) fn.Result[domain.Flight] {
		return fn.FromPair(s.flights.Get(ctx, hit.ID))
	})

	var set MatchSet[FlightMatch]
	for i, res := range candidates {
		hit := hits[i]
		flight, err := res.Unwrap()
		if err != nil {
			set.Dropped++
			s.logger.Warn("flight candidate dropped", "id", hit.ID, "error", err)
			continue
		}
		if !flightFits(flight, crit) {
			continue
		}
		set.Matches = append(set.Matches, FlightMatch{
			Flight:  flight,
			Score:   hit.Score,
			Reasons: flightReasons(profile, flight, crit),
		})
	}

	sort.SliceStable(set.Matches, func(i, j int) bool { return set.Matches[i].Score > set.Matches[j].Score })
	if len(set.Matches) > crit.limit() {
		set.Matches = set.Matches[:crit.limit()]
	}
	s.observe("flights", len(set.Matches), set.Dropped)
	return set, nil
}

// MatchCompanions finds other travelers with compatible profiles.
func (s *Service) MatchCompanions(ctx context.Context, crit Criteria) (MatchSet[CompanionMatch], error) {
	profile, vector, err := s.prepare(ctx, crit)
	if err != nil {
		return MatchSet[CompanionMatch]{}, err
	}

	filter := semantic.Filter{Not: map[string]string{"id": crit.UserID}}
	hits, err := s.vectors.Query(ctx, domain.NamespaceUsers, vector, 2*crit.limit(), filter)
	if err != nil {
		return MatchSet[CompanionMatch]{}, fmt.Errorf("matching: query companions: %w", err)
	}

	candidates := fn.ParMap(hits, hydrateWorkers, func(hit semantic.SearchResult) fn.Result[domain.EnrichedProfile] {
		return fn.FromPair(s.profiles.GetEnriched(ctx, hit.ID))
	})

	var set MatchSet[CompanionMatch]
	for i, res := range candidates {
		hit := hits[i]
		candidate, err := res.Unwrap()
		if err != nil {
			set.Dropped++
			s.logger.Warn("companion candidate dropped", "id", hit.ID, "error", err)
			continue
		}
		if candidate.ID == crit.UserID {
			continue
		}
		set.Matches = append(set.Matches, CompanionMatch{
			Profile: candidate,
			Score:   hit.Score,
			Reasons: companionReasons(profile, candidate),
		})
	}

	sort.SliceStable(set.Matches, func(i, j int) bool { return set.Matches[i].Score > set.Matches[j].Score })
	if len(set.Matches) > crit.limit() {
		set.Matches = set.Matches[:crit.limit()]
	}
	s.observe("companions", len(set.Matches), set.Dropped)
	return set, nil
}

// MatchOffers finds open JetShare offers fitting the user's preferences.
func (s *Service) MatchOffers(ctx context.Context, crit Criteria) (MatchSet[OfferMatch], error) {
	profile, vector, err := s.prepare(ctx, crit)
	if err != nil {
		return MatchSet[OfferMatch]{}, err
	}

	filter := semantic.Filter{Match: map[string]string{"status": string(domain.OfferOpen)}}
	if crit.Destination != "" {
		filter.Match["arrival"] = crit.Destination
	}

	hits, err := s.vectors.Query(ctx, domain.NamespaceOffers, vector, 2*crit.limit(), filter)
	if err != nil {
		return MatchSet[OfferMatch]{}, fmt.Errorf("matching: query offers: %w", err)
	}

	candidates := fn.ParMap(hits, hydrateWorkers, func(hit semantic.SearchResult) fn.Result[domain.JetShareOffer] {
		return fn.FromPair(s.offers.Get(ctx, hit.ID))
	})

	var set MatchSet[OfferMatch]
	for i, res := range candidates {
		hit := hits[i]
		offer, err := res.Unwrap()
		if err != nil {
			set.Dropped++
			s.logger.Warn("offer candidate dropped", "id", hit.ID, "error", err)
			continue
		}
		if !offerFits(offer, crit) {
			continue
		}
		set.Matches = append(set.Matches, OfferMatch{
			Offer:   offer,
			Score:   hit.Score,
			Reasons: offerReasons(profile, offer),
		})
	}

	sort.SliceStable(set.Matches, func(i, j int) bool { return set.Matches[i].Score > set.Matches[j].Score })
	if len(set.Matches) > crit.limit() {
		set.Matches = set.Matches[:crit.limit()]
	}
	s.observe("offers", len(set.Matches), set.Dropped)
	return set, nil
}

// MatchAll runs flight and companion matching concurrently. Each branch
// settles on its own; a failure in one never suppresses the other.
func (s *Service) MatchAll(ctx context.Context, crit Criteria) AllMatches {
	results := fn.Settle(
		func() (any, error) { return s.MatchFlights(ctx, crit) },
		func() (any, error) { return s.MatchCompanions(ctx, crit) },
	)

	var all AllMatches
	if v, err := results[0].Unwrap(); err != nil {
		all.FlightsErr = err
	} else {
		all.Flights = v.(MatchSet[FlightMatch])
	}
	if v, err := results[1].Unwrap(); err != nil {
		all.CompanionsErr = err
	} else {
		all.Companions = v.(MatchSet[CompanionMatch])
	}
	return all
}

// prepare loads the caller's profile and embeds the query text.
func (s *Service) prepare(ctx context.Context, crit Criteria) (domain.EnrichedProfile, []float32, error) {
	profile, err := s.profiles.GetEnriched(ctx, crit.UserID)
	if err != nil {
		return domain.EnrichedProfile{}, nil, fmt.Errorf("matching: load profile: %w", err)
	}

	query := buildQuery(profile, crit)
	vector, err := s.enc.Encode(ctx, query)
	if err != nil {
		return domain.EnrichedProfile{}, nil, fmt.Errorf("matching: encode query: %w", err)
	}
	return profile, vector, nil
}

// buildQuery combines stored preferences with the per-request criteria into
// the text that gets embedded.
func buildQuery(p domain.EnrichedProfile, crit Criteria) string {
	var b strings.Builder
	b.WriteString(textgen.ProfileText(p))
	if crit.Destination != "" {
		fmt.Fprintf(&b, " Looking for travel to %s.", crit.Destination)
	}
	if !crit.DateFrom.IsZero() {
		fmt.Fprintf(&b, " Traveling around %s.", crit.DateFrom.Format("January 2, 2006"))
	}
	if crit.TripPurpose != "" {
		fmt.Fprintf(&b, " Purpose of trip: %s.", crit.TripPurpose)
	}
	return b.String()
}

// flightFits applies the in-process post-filters the vector metadata cannot
// express precisely.
func flightFits(f domain.Flight, crit Criteria) bool {
	if f.Status != domain.FlightScheduled {
		return false
	}
	if crit.MinSeats > 0 && f.AvailableSeats < crit.MinSeats {
		return false
	}
	if !crit.DateFrom.IsZero() && f.DepartureAt.Before(crit.DateFrom) {
		return false
	}
	if !crit.DateTo.IsZero() && f.DepartureAt.After(crit.DateTo) {
		return false
	}
	return true
}

func offerFits(o domain.JetShareOffer, crit Criteria) bool {
	if o.Status != domain.OfferOpen {
		return false
	}
	if o.CreatorID == crit.UserID {
		return false
	}
	if !crit.DateFrom.IsZero() && o.FlightDate.Before(crit.DateFrom) {
		return false
	}
	if !crit.DateTo.IsZero() && o.FlightDate.After(crit.DateTo) {
		return false
	}
	return true
}

func (s *Service) observe(kind string, matched, dropped int) {
	if s.matchesTotal != nil {
		s.matchesTotal.Inc()
	}
	if s.droppedTotal != nil && dropped > 0 {
		s.droppedTotal.Add(int64(dropped))
	}
	s.logger.Info("matching done", "kind", kind, "matches", matched, "dropped", dropped)
}
