package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"github.com/BlockSavvy/jetstream-sub001/engine/matching"
	"github.com/BlockSavvy/jetstream-sub001/engine/semantic"
	"github.com/BlockSavvy/jetstream-sub001/engine/sim"
	"github.com/BlockSavvy/jetstream-sub001/engine/store"
	"github.com/BlockSavvy/jetstream-sub001/pkg/metrics"
	"github.com/BlockSavvy/jetstream-sub001/pkg/repo"
)

// apiServer bundles the service dependencies the HTTP handlers need.
type apiServer struct {
	matcher  *matching.Service
	sims     *sim.Engine
	simLogs  *store.SimLogStore
	profiles *store.ProfileStore
	flights  *store.FlightStore
	offers   *store.OfferStore
	crews    *store.CrewStore
	jets     *repo.GormRepo[store.JetRow, string]
	airports *repo.GormRepo[store.AirportRow, string]
	tokens   *repo.GormRepo[store.TokenRow, string]
	vectors  semantic.Store
	logger   *slog.Logger
	registry *metrics.Registry
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrOfferNotFound),
		errors.Is(err, domain.ErrCrewNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOffer),
		errors.Is(err, domain.ErrInvalidSimParams),
		errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) fail(w http.ResponseWriter, err error, op string) {
	status := statusFor(err)
	s.registry.Counter("api_request_errors_total", "Failed API requests by operation.", "op", op).Inc()
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
		jsonError(w, status, "internal server error")
		return
	}
	jsonError(w, status, err.Error())
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Matching ---

func (s *apiServer) handleMatchAll(w http.ResponseWriter, r *http.Request) {
	crit, ok := decodeCriteria(w, r)
	if !ok {
		return
	}

	all := s.matcher.MatchAll(r.Context(), crit)
	if all.FlightsErr != nil && all.CompanionsErr != nil {
		s.fail(w, all.FlightsErr, "match all")
		return
	}

	resp := map[string]any{
		"flights":    all.Flights,
		"companions": all.Companions,
	}
	if all.FlightsErr != nil {
		resp["flights_error"] = all.FlightsErr.Error()
	}
	if all.CompanionsErr != nil {
		resp["companions_error"] = all.CompanionsErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleMatchFlights(w http.ResponseWriter, r *http.Request) {
	crit, ok := decodeCriteria(w, r)
	if !ok {
		return
	}
	set, err := s.matcher.MatchFlights(r.Context(), crit)
	if err != nil {
		s.fail(w, err, "match flights")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *apiServer) handleMatchCompanions(w http.ResponseWriter, r *http.Request) {
	crit, ok := decodeCriteria(w, r)
	if !ok {
		return
	}
	set, err := s.matcher.MatchCompanions(r.Context(), crit)
	if err != nil {
		s.fail(w, err, "match companions")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *apiServer) handleMatchOffers(w http.ResponseWriter, r *http.Request) {
	crit, ok := decodeCriteria(w, r)
	if !ok {
		return
	}
	set, err := s.matcher.MatchOffers(r.Context(), crit)
	if err != nil {
		s.fail(w, err, "match offers")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func decodeCriteria(w http.ResponseWriter, r *http.Request) (matching.Criteria, bool) {
	var crit matching.Criteria
	if err := json.NewDecoder(r.Body).Decode(&crit); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return crit, false
	}
	if crit.UserID == "" {
		jsonError(w, http.StatusBadRequest, "user_id is required")
		return crit, false
	}
	return crit, true
}

// --- Index sync ---

func (s *apiServer) handleSyncProfile(w http.ResponseWriter, r *http.Request) {
	var p domain.EnrichedProfile
	if !readJSON(w, r, &p) {
		return
	}
	if p.ID == "" {
		jsonError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.profiles.Save(r.Context(), p); err != nil {
		s.fail(w, err, "save profile")
		return
	}
	if err := s.matcher.SyncProfile(r.Context(), p); err != nil {
		s.fail(w, err, "sync profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"indexed": p.ID})
}

func (s *apiServer) handleSyncFlight(w http.ResponseWriter, r *http.Request) {
	var f domain.Flight
	if !readJSON(w, r, &f) {
		return
	}
	if f.ID == "" {
		jsonError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.flights.Save(r.Context(), f); err != nil {
		s.fail(w, err, "save flight")
		return
	}
	if err := s.matcher.SyncFlight(r.Context(), f); err != nil {
		s.fail(w, err, "sync flight")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"indexed": f.ID})
}

func (s *apiServer) handleSyncOffer(w http.ResponseWriter, r *http.Request) {
	var o domain.JetShareOffer
	if !readJSON(w, r, &o) {
		return
	}
	if o.ID == "" {
		jsonError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.matcher.SyncOffer(r.Context(), o); err != nil {
		s.fail(w, err, "sync offer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"indexed": o.ID})
}

func (s *apiServer) handleSyncCrew(w http.ResponseWriter, r *http.Request) {
	var c domain.CrewMember
	if !readJSON(w, r, &c) {
		return
	}
	if c.ID == "" {
		jsonError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.crews.Save(r.Context(), c); err != nil {
		s.fail(w, err, "save crew")
		return
	}
	if err := s.matcher.SyncCrew(r.Context(), c); err != nil {
		s.fail(w, err, "sync crew")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"indexed": c.ID})
}

func (s *apiServer) handleRemoveVector(w http.ResponseWriter, r *http.Request) {
	ns := domain.Namespace(r.PathValue("namespace"))
	id := r.PathValue("id")
	if err := s.matcher.Remove(r.Context(), ns, id); err != nil {
		s.fail(w, err, "remove vector")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"removed": id})
}

// --- JetShare offers ---

func (s *apiServer) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var o domain.JetShareOffer
	if !readJSON(w, r, &o) {
		return
	}
	created, err := s.offers.Create(r.Context(), o)
	if err != nil {
		s.fail(w, err, "create offer")
		return
	}
	if err := s.matcher.SyncOffer(r.Context(), created); err != nil {
		s.logger.Warn("offer created but not indexed", "id", created.ID, "err", err)
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *apiServer) handleListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.offers.Open(r.Context(), 50)
	if err != nil {
		s.fail(w, err, "list offers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": offers})
}

// offerActionRequest carries the acting user for a status transition.
type offerActionRequest struct {
	UserID string `json:"user_id"`
}

func (s *apiServer) handleOfferAction(action func(ctx context.Context, id, actingUserID string) (domain.JetShareOffer, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req offerActionRequest
		if !readJSON(w, r, &req) {
			return
		}
		if req.UserID == "" {
			jsonError(w, http.StatusBadRequest, "user_id is required")
			return
		}

		offer, err := action(r.Context(), r.PathValue("id"), req.UserID)
		if err != nil {
			s.fail(w, err, "offer transition")
			return
		}
		// keep the index in step with the new status
		if err := s.matcher.SyncOffer(r.Context(), offer); err != nil {
			s.logger.Warn("offer transition not re-indexed", "id", offer.ID, "err", err)
		}
		writeJSON(w, http.StatusOK, offer)
	}
}

// --- Simulations ---

func (s *apiServer) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var params domain.SimParams
	if !readJSON(w, r, &params) {
		return
	}
	result, err := s.sims.Run(r.Context(), params)
	if err != nil {
		s.fail(w, err, "run simulation")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *apiServer) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	results, err := s.simLogs.Recent(r.Context(), 20)
	if err != nil {
		s.fail(w, err, "list simulations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"simulations": results})
}

func (s *apiServer) handleGetSimulation(w http.ResponseWriter, r *http.Request) {
	result, err := s.simLogs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err, "get simulation")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Vector proxy routes (served for HTTPStore clients) ---

func (s *apiServer) handleVectorUpsert(w http.ResponseWriter, r *http.Request) {
	var req semantic.UpsertRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.vectors.Upsert(r.Context(), req.Namespace, req.Record); err != nil {
		s.fail(w, err, "vector upsert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"upserted": req.Record.ID})
}

func (s *apiServer) handleVectorQuery(w http.ResponseWriter, r *http.Request) {
	var req semantic.QueryRequest
	if !readJSON(w, r, &req) {
		return
	}
	matches, err := s.vectors.Query(r.Context(), req.Namespace, req.Vector, req.TopK, req.Filter)
	if err != nil {
		s.fail(w, err, "vector query")
		return
	}
	writeJSON(w, http.StatusOK, semantic.QueryResponse{Matches: matches})
}

func (s *apiServer) handleVectorDelete(w http.ResponseWriter, r *http.Request) {
	var req semantic.DeleteRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := s.vectors.Delete(r.Context(), req.Namespace, req.ID); err != nil {
		s.fail(w, err, "vector delete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": req.ID})
}

// --- Catalog ---

func (s *apiServer) handleListJets(w http.ResponseWriter, r *http.Request) {
	rows, err := s.jets.List(r.Context(), repo.ListOpts{})
	if err != nil {
		s.fail(w, err, "list jets")
		return
	}
	jets := make([]domain.Jet, len(rows))
	for i, row := range rows {
		jets[i] = row.ToDomain()
	}
	writeJSON(w, http.StatusOK, map[string]any{"jets": jets})
}

func (s *apiServer) handleListTokens(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("id")
	rows, err := s.tokens.List(r.Context(), repo.ListOpts{Filter: map[string]any{"owner_id": ownerID}})
	if err != nil {
		s.fail(w, err, "list tokens")
		return
	}
	tokens := make([]domain.FractionalToken, len(rows))
	for i, row := range rows {
		tokens[i] = row.ToDomain()
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (s *apiServer) handleListAirports(w http.ResponseWriter, r *http.Request) {
	rows, err := s.airports.List(r.Context(), repo.ListOpts{})
	if err != nil {
		s.fail(w, err, "list airports")
		return
	}
	airports := make([]domain.Airport, len(rows))
	for i, row := range rows {
		airports[i] = row.ToDomain()
	}
	writeJSON(w, http.StatusOK, map[string]any{"airports": airports})
}
