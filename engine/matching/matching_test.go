package matching

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"github.com/BlockSavvy/jetstream-sub001/engine/semantic"
)

type fakeEncoder struct {
	vec []float32
	err error
}

func (f *fakeEncoder) Encode(_ context.Context, _ string) ([]float32, error) {
	return f.vec, f.err
}

type fakeProfiles struct {
	profiles map[string]domain.EnrichedProfile
}

func (f *fakeProfiles) GetEnriched(_ context.Context, id string) (domain.EnrichedProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return domain.EnrichedProfile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

type fakeFlights struct {
	flights map[string]domain.Flight
}

func (f *fakeFlights) Get(_ context.Context, id string) (domain.Flight, error) {
	fl, ok := f.flights[id]
	if !ok {
		return domain.Flight{}, domain.ErrFlightNotFound
	}
	return fl, nil
}

type fakeOffers struct {
	offers map[string]domain.JetShareOffer
}

func (f *fakeOffers) Get(_ context.Context, id string) (domain.JetShareOffer, error) {
	o, ok := f.offers[id]
	if !ok {
		return domain.JetShareOffer{}, domain.ErrOfferNotFound
	}
	return o, nil
}

// failingStore wraps a Store and fails queries on one namespace.
type failingStore struct {
	semantic.Store
	failNS domain.Namespace
}

func (s *failingStore) Query(ctx context.Context, ns domain.Namespace, vector []float32, topK int, filter semantic.Filter) ([]semantic.SearchResult, error) {
	if ns == s.failNS {
		return nil, errors.New("vector store unavailable")
	}
	return s.Store.Query(ctx, ns, vector, topK, filter)
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scheduled(id, dest string, departure time.Time, seats int) domain.Flight {
	return domain.Flight{
		ID:             id,
		Origin:         "NYC",
		Destination:    dest,
		DepartureAt:    departure,
		ArrivalAt:      departure.Add(5 * time.Hour),
		AvailableSeats: seats,
		BasePrice:      8000,
		Status:         domain.FlightScheduled,
	}
}

func seedFlight(t *testing.T, store semantic.Store, f domain.Flight, vec []float32) {
	t.Helper()
	err := store.Upsert(context.Background(), domain.NamespaceFlights, semantic.Record{
		ID:     f.ID,
		Vector: vec,
		Meta: map[string]string{
			"id": f.ID, "destination": f.Destination, "status": string(f.Status),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func newService(store semantic.Store, profiles *fakeProfiles, flights *fakeFlights) *Service {
	return New(&fakeEncoder{vec: []float32{1, 0, 0}}, store, profiles, flights, &fakeOffers{}, quiet(), nil)
}

func TestMatchFlightsPreferredDestinationReason(t *testing.T) {
	store := semantic.NewMemoryStore()
	departure := time.Now().Add(48 * time.Hour)
	flight := scheduled("f-lax", "LAX", departure, 6)
	seedFlight(t, store, flight, []float32{1, 0, 0})

	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{
		"u-1": {ID: "u-1", Name: "Ava", PreferredDestinations: []string{"LAX"}},
	}}
	svc := newService(store, profiles, &fakeFlights{flights: map[string]domain.Flight{"f-lax": flight}})

	set, err := svc.MatchFlights(context.Background(), Criteria{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Matches) != 1 {
		t.Fatalf("matches = %d", len(set.Matches))
	}

	found := false
	for _, reason := range set.Matches[0].Reasons {
		if strings.Contains(reason, "preferred destination") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no preferred destination reason in %v", set.Matches[0].Reasons)
	}
}

func TestMatchFlightsAlwaysHasReason(t *testing.T) {
	store := semantic.NewMemoryStore()
	departure := time.Now().Add(24 * time.Hour)
	flight := scheduled("f-mia", "MIA", departure, 4)
	seedFlight(t, store, flight, []float32{1, 0, 0})

	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{
		"u-1": {ID: "u-1", Name: "Ava"},
	}}
	svc := newService(store, profiles, &fakeFlights{flights: map[string]domain.Flight{"f-mia": flight}})

	set, err := svc.MatchFlights(context.Background(), Criteria{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Matches) != 1 || len(set.Matches[0].Reasons) == 0 {
		t.Fatalf("expected a fallback reason, got %+v", set.Matches)
	}
}

func TestMatchFlightsCountsDroppedCandidates(t *testing.T) {
	store := semantic.NewMemoryStore()
	departure := time.Now().Add(24 * time.Hour)
	alive := scheduled("f-ok", "ASE", departure, 4)
	seedFlight(t, store, alive, []float32{1, 0, 0})
	seedFlight(t, store, scheduled("f-gone", "ASE", departure, 4), []float32{0.9, 0.1, 0})

	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{"u-1": {ID: "u-1"}}}
	svc := newService(store, profiles, &fakeFlights{flights: map[string]domain.Flight{"f-ok": alive}})

	set, err := svc.MatchFlights(context.Background(), Criteria{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	if set.Dropped != 1 {
		t.Fatalf("dropped = %d, want 1", set.Dropped)
	}
	if len(set.Matches) != 1 || set.Matches[0].Flight.ID != "f-ok" {
		t.Fatalf("surviving match wrong: %+v", set.Matches)
	}
}

func TestMatchFlightsPostFilters(t *testing.T) {
	store := semantic.NewMemoryStore()
	now := time.Now()
	early := scheduled("f-early", "LAX", now.Add(12*time.Hour), 8)
	late := scheduled("f-late", "LAX", now.Add(30*24*time.Hour), 8)
	tiny := scheduled("f-tiny", "LAX", now.Add(48*time.Hour), 1)
	good := scheduled("f-good", "LAX", now.Add(72*time.Hour), 8)
	for _, f := range []domain.Flight{early, late, tiny, good} {
		seedFlight(t, store, f, []float32{1, 0, 0})
	}

	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{"u-1": {ID: "u-1"}}}
	svc := newService(store, profiles, &fakeFlights{flights: map[string]domain.Flight{
		"f-early": early, "f-late": late, "f-tiny": tiny, "f-good": good,
	}})

	set, err := svc.MatchFlights(context.Background(), Criteria{
		UserID:   "u-1",
		DateFrom: now.Add(24 * time.Hour),
		DateTo:   now.Add(7 * 24 * time.Hour),
		MinSeats: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Matches) != 1 || set.Matches[0].Flight.ID != "f-good" {
		t.Fatalf("post filters failed: %+v", set.Matches)
	}
}

func TestMatchFlightsSortsAndTruncates(t *testing.T) {
	store := semantic.NewMemoryStore()
	departure := time.Now().Add(24 * time.Hour)
	flights := map[string]domain.Flight{}
	vecs := map[string][]float32{
		"f-a": {1, 0, 0},
		"f-b": {0.9, 0.4, 0},
		"f-c": {0.5, 0.8, 0},
	}
	for id, vec := range vecs {
		f := scheduled(id, "LAX", departure, 5)
		flights[id] = f
		seedFlight(t, store, f, vec)
	}

	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{"u-1": {ID: "u-1"}}}
	svc := newService(store, profiles, &fakeFlights{flights: flights})

	set, err := svc.MatchFlights(context.Background(), Criteria{UserID: "u-1", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Matches) != 2 {
		t.Fatalf("limit not applied: %d matches", len(set.Matches))
	}
	if set.Matches[0].Flight.ID != "f-a" || set.Matches[1].Flight.ID != "f-b" {
		t.Fatalf("wrong order: %s, %s", set.Matches[0].Flight.ID, set.Matches[1].Flight.ID)
	}
	if set.Matches[0].Score < set.Matches[1].Score {
		t.Fatal("scores not descending")
	}
}

func TestMatchFlightsUnknownProfile(t *testing.T) {
	svc := newService(semantic.NewMemoryStore(), &fakeProfiles{profiles: map[string]domain.EnrichedProfile{}}, &fakeFlights{})

	_, err := svc.MatchFlights(context.Background(), Criteria{UserID: "nobody"})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestMatchCompanionsExcludesSelf(t *testing.T) {
	store := semantic.NewMemoryStore()
	for id, vec := range map[string][]float32{"u-1": {1, 0, 0}, "u-2": {0.9, 0.1, 0}} {
		err := store.Upsert(context.Background(), domain.NamespaceUsers, semantic.Record{
			ID: id, Vector: vec, Meta: map[string]string{"id": id},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{
		"u-1": {ID: "u-1", Industry: "finance"},
		"u-2": {ID: "u-2", Industry: "finance"},
	}}
	svc := newService(store, profiles, &fakeFlights{})

	set, err := svc.MatchCompanions(context.Background(), Criteria{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Matches) != 1 || set.Matches[0].Profile.ID != "u-2" {
		t.Fatalf("expected only u-2, got %+v", set.Matches)
	}
	if !strings.Contains(strings.Join(set.Matches[0].Reasons, " "), "industry") {
		t.Fatalf("expected industry reason, got %v", set.Matches[0].Reasons)
	}
}

func TestMatchAllIndependentFailures(t *testing.T) {
	base := semantic.NewMemoryStore()
	departure := time.Now().Add(24 * time.Hour)
	flight := scheduled("f-1", "LAX", departure, 4)
	seedFlight(t, base, flight, []float32{1, 0, 0})

	store := &failingStore{Store: base, failNS: domain.NamespaceUsers}
	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{"u-1": {ID: "u-1"}}}
	svc := newService(store, profiles, &fakeFlights{flights: map[string]domain.Flight{"f-1": flight}})

	all := svc.MatchAll(context.Background(), Criteria{UserID: "u-1"})
	if all.FlightsErr != nil {
		t.Fatalf("flights branch should succeed: %v", all.FlightsErr)
	}
	if len(all.Flights.Matches) != 1 {
		t.Fatalf("flight results lost: %+v", all.Flights)
	}
	if all.CompanionsErr == nil {
		t.Fatal("companions branch should fail")
	}
}

func TestSyncProfileIndexes(t *testing.T) {
	store := semantic.NewMemoryStore()
	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{}}
	svc := newService(store, profiles, &fakeFlights{})

	p := domain.EnrichedProfile{ID: "u-9", Name: "Morgan", Industry: "media"}
	if err := svc.SyncProfile(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if store.Len(domain.NamespaceUsers) != 1 {
		t.Fatal("profile not indexed")
	}

	hits, err := store.Query(context.Background(), domain.NamespaceUsers, []float32{1, 0, 0}, 1, semantic.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].Meta["industry"] != "media" {
		t.Fatalf("meta = %v", hits[0].Meta)
	}
}

func TestMatchOffersSkipsOwnAndClaimed(t *testing.T) {
	store := semantic.NewMemoryStore()
	date := time.Now().Add(10 * 24 * time.Hour)
	offers := map[string]domain.JetShareOffer{
		"o-own":    {ID: "o-own", CreatorID: "u-1", Departure: "NYC", Arrival: "LAX", FlightDate: date, Status: domain.OfferOpen},
		"o-taken":  {ID: "o-taken", CreatorID: "u-2", Departure: "NYC", Arrival: "LAX", FlightDate: date, Status: domain.OfferAccepted},
		"o-good":   {ID: "o-good", CreatorID: "u-3", Departure: "NYC", Arrival: "LAX", FlightDate: date, RequestedShareAmount: 2500, Status: domain.OfferOpen},
	}
	for id := range offers {
		err := store.Upsert(context.Background(), domain.NamespaceOffers, semantic.Record{
			ID: id, Vector: []float32{1, 0, 0},
			Meta: map[string]string{"id": id, "status": string(domain.OfferOpen)},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	profiles := &fakeProfiles{profiles: map[string]domain.EnrichedProfile{
		"u-1": {ID: "u-1", PreferredDestinations: []string{"LAX"}},
	}}
	svc := New(&fakeEncoder{vec: []float32{1, 0, 0}}, store, profiles, &fakeFlights{}, &fakeOffers{offers: offers}, quiet(), nil)

	set, err := svc.MatchOffers(context.Background(), Criteria{UserID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Matches) != 1 || set.Matches[0].Offer.ID != "o-good" {
		t.Fatalf("expected only o-good, got %+v", set.Matches)
	}
	if !strings.Contains(strings.Join(set.Matches[0].Reasons, " "), "preferred destination") {
		t.Fatalf("reasons = %v", set.Matches[0].Reasons)
	}
}

func TestSyncFailsWhenEncoderDown(t *testing.T) {
	store := semantic.NewMemoryStore()
	svc := New(&fakeEncoder{err: errors.New("provider down")}, store, &fakeProfiles{}, &fakeFlights{}, &fakeOffers{}, quiet(), nil)

	err := svc.SyncFlight(context.Background(), scheduled("f-1", "LAX", time.Now(), 4))
	if err == nil {
		t.Fatal("expected encode error to surface")
	}
	if store.Len(domain.NamespaceFlights) != 0 {
		t.Fatal("nothing should be indexed on failure")
	}
}

func TestRemove(t *testing.T) {
	store := semantic.NewMemoryStore()
	svc := newService(store, &fakeProfiles{}, &fakeFlights{})

	seedFlight(t, store, scheduled("f-1", "LAX", time.Now(), 4), []float32{1, 0, 0})
	if err := svc.Remove(context.Background(), domain.NamespaceFlights, "f-1"); err != nil {
		t.Fatal(err)
	}
	if store.Len(domain.NamespaceFlights) != 0 {
		t.Fatal("vector not removed")
	}

	// removing an id that is already gone stays quiet
	if err := svc.Remove(context.Background(), domain.NamespaceFlights, "f-1"); err != nil {
		t.Fatal(err)
	}
}
