// Package domain defines core domain types, constants, and validation for the
// JetStream matching engine. It acts as the validation gate at pipeline entry points.
package domain

import "time"

// FlightStatus tracks a flight through its lifecycle.
type FlightStatus string

const (
	FlightScheduled FlightStatus = "scheduled"
	FlightBoarding  FlightStatus = "boarding"
	FlightInAir     FlightStatus = "in_air"
	FlightCompleted FlightStatus = "completed"
	FlightCancelled FlightStatus = "cancelled"
)

// ValidFlightStatuses is the set of recognised flight statuses.
var ValidFlightStatuses = map[FlightStatus]bool{
	FlightScheduled: true, FlightBoarding: true, FlightInAir: true,
	FlightCompleted: true, FlightCancelled: true,
}

// OfferStatus tracks a JetShare offer through its lifecycle.
type OfferStatus string

const (
	OfferOpen      OfferStatus = "open"
	OfferAccepted  OfferStatus = "accepted"
	OfferCompleted OfferStatus = "completed"
	OfferCancelled OfferStatus = "cancelled"
)

// offerTransitions encodes the allowed status transitions:
// open→accepted (claim), accepted→completed, open→cancelled.
var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferOpen:     {OfferAccepted, OfferCancelled},
	OfferAccepted: {OfferCompleted},
}

// CanTransitionTo reports whether next is a legal successor status.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	for _, allowed := range offerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Namespace partitions the vector store by entity type.
type Namespace string

const (
	NamespaceUsers       Namespace = "users"
	NamespaceFlights     Namespace = "flights"
	NamespaceOffers      Namespace = "offers"
	NamespaceCrews       Namespace = "crews"
	NamespaceSimulations Namespace = "simulations"
)

// BudgetRange is a user's stated per-flight spend range.
type BudgetRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether amount falls inside the range.
func (b BudgetRange) Contains(amount float64) bool {
	return amount >= b.Min && amount <= b.Max
}

// TravelRecord is one past trip from a user's booking history.
type TravelRecord struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	FlownAt     time.Time `json:"flown_at"`
}

// EnrichedProfile is a read-time projection of a profiles row joined with the
// user's bookings→flights history. It has no independent persistence.
type EnrichedProfile struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	PreferredDestinations []string       `json:"preferred_destinations,omitempty"`
	TripTypes             []string       `json:"trip_types,omitempty"`
	Languages             []string       `json:"languages,omitempty"`
	AmenityPrefs          []string       `json:"amenity_prefs,omitempty"`
	Budget                *BudgetRange   `json:"budget,omitempty"`
	Industry              string         `json:"industry,omitempty"`
	JobTitle              string         `json:"job_title,omitempty"`
	Company               string         `json:"company,omitempty"`
	Expertise             []string       `json:"expertise,omitempty"`
	Interests             []string       `json:"interests,omitempty"`
	TravelHistory         []TravelRecord `json:"travel_history,omitempty"`
}

// Jet describes an aircraft attached to a flight.
type Jet struct {
	ID           string   `json:"id"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	Capacity     int      `json:"capacity"`
	Amenities    []string `json:"amenities,omitempty"`
}

// Airport is a relational airports row.
type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// Flight is a scheduled jet departure. Owned by the relational database;
// the matching pipeline only reads and projects it.
type Flight struct {
	ID             string       `json:"id"`
	Jet            Jet          `json:"jet"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	DepartureAt    time.Time    `json:"departure_at"`
	ArrivalAt      time.Time    `json:"arrival_at"`
	AvailableSeats int          `json:"available_seats"`
	BasePrice      float64      `json:"base_price"`
	Status         FlightStatus `json:"status"`
}

// JetShareOffer is a peer-to-peer seat-cost-sharing listing.
type JetShareOffer struct {
	ID                   string      `json:"id"`
	CreatorID            string      `json:"creator_id"`
	MatchedUserID        string      `json:"matched_user_id,omitempty"`
	Departure            string      `json:"departure"`
	Arrival              string      `json:"arrival"`
	FlightDate           time.Time   `json:"flight_date"`
	AircraftModel        string      `json:"aircraft_model,omitempty"`
	TotalFlightCost      float64     `json:"total_flight_cost"`
	RequestedShareAmount float64     `json:"requested_share_amount"`
	Status               OfferStatus `json:"status"`
	CreatedAt            time.Time   `json:"created_at"`
}

// CrewMember is a crew profile indexed in the crews namespace.
type CrewMember struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Specializations []string `json:"specializations,omitempty"`
	Bio             string   `json:"bio,omitempty"`
}

// FractionalToken is an ownership-token holding row; read for payment context.
type FractionalToken struct {
	ID       string  `json:"id"`
	OwnerID  string  `json:"owner_id"`
	JetID    string  `json:"jet_id"`
	Share    float64 `json:"share"`
	TokenRef string  `json:"token_ref,omitempty"`
}

// SimType is a simulation scenario kind.
type SimType string

const (
	SimDemandForecast SimType = "demand_forecast"
	SimFillOptimizer  SimType = "fill_optimizer"
	SimPriceSweep     SimType = "price_sweep"
)

// ValidSimTypes is the set of recognised simulation types.
var ValidSimTypes = map[SimType]bool{
	SimDemandForecast: true, SimFillOptimizer: true, SimPriceSweep: true,
}

// SimParams are the inputs of one simulation run.
type SimParams struct {
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Type          SimType   `json:"type"`
	VirtualUsers  int       `json:"virtual_users"`
	UseAIMatching bool      `json:"use_ai_matching"`
}

// SimMetrics are the computed outputs of a run. FillRate and CostRecovery
// are percentages in [0,100].
type SimMetrics struct {
	FillRate     float64 `json:"fill_rate"`
	Revenue      float64 `json:"revenue"`
	CostRecovery float64 `json:"cost_recovery"`
}

// SimLogEvent is one named step in the run's narrative log.
type SimLogEvent struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// SimResult is the immutable output of one simulation invocation.
type SimResult struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Type      SimType       `json:"type"`
	Params    SimParams     `json:"params"`
	Metrics   SimMetrics    `json:"metrics"`
	Events    []SimLogEvent `json:"events"`
	Summary   string        `json:"summary"`
}
