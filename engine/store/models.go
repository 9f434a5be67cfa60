// Package store implements the relational persistence layer on Postgres.
// GORM row types are kept separate from domain entities and converted at the
// boundary.
package store

import (
	"time"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// ProfileRow maps the profiles table.
type ProfileRow struct {
	ID                    string              `gorm:"primaryKey;column:id"`
	Name                  string              `gorm:"column:name"`
	PreferredDestinations []string            `gorm:"column:preferred_destinations;serializer:json"`
	TripTypes             []string            `gorm:"column:trip_types;serializer:json"`
	Languages             []string            `gorm:"column:languages;serializer:json"`
	AmenityPrefs          []string            `gorm:"column:amenity_prefs;serializer:json"`
	Budget                *domain.BudgetRange `gorm:"column:budget;serializer:json"`
	Industry              string              `gorm:"column:industry"`
	JobTitle              string              `gorm:"column:job_title"`
	Company               string              `gorm:"column:company"`
	Expertise             []string            `gorm:"column:expertise;serializer:json"`
	Interests             []string            `gorm:"column:interests;serializer:json"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (ProfileRow) TableName() string { return "profiles" }

// BookingRow maps the bookings table. A booking ties a user to a flight.
type BookingRow struct {
	ID        string `gorm:"primaryKey;column:id"`
	UserID    string `gorm:"column:user_id;index"`
	FlightID  string `gorm:"column:flight_id;index"`
	Seats     int    `gorm:"column:seats"`
	CreatedAt time.Time
}

func (BookingRow) TableName() string { return "bookings" }

// JetRow maps the jets table.
type JetRow struct {
	ID           string   `gorm:"primaryKey;column:id"`
	Model        string   `gorm:"column:model"`
	Manufacturer string   `gorm:"column:manufacturer"`
	Capacity     int      `gorm:"column:capacity"`
	Amenities    []string `gorm:"column:amenities;serializer:json"`
}

func (JetRow) TableName() string { return "jets" }

// ToDomain converts the row to a domain entity.
func (r JetRow) ToDomain() domain.Jet {
	return domain.Jet{
		ID:           r.ID,
		Model:        r.Model,
		Manufacturer: r.Manufacturer,
		Capacity:     r.Capacity,
		Amenities:    r.Amenities,
	}
}

// AirportRow maps the airports table.
type AirportRow struct {
	Code string `gorm:"primaryKey;column:code"`
	Name string `gorm:"column:name"`
	City string `gorm:"column:city"`
}

func (AirportRow) TableName() string { return "airports" }

// ToDomain converts the row to a domain entity.
func (r AirportRow) ToDomain() domain.Airport {
	return domain.Airport{Code: r.Code, Name: r.Name, City: r.City}
}

// FlightRow maps the flights table.
type FlightRow struct {
	ID             string    `gorm:"primaryKey;column:id"`
	JetID          string    `gorm:"column:jet_id;index"`
	Origin         string    `gorm:"column:origin"`
	Destination    string    `gorm:"column:destination"`
	DepartureAt    time.Time `gorm:"column:departure_at"`
	ArrivalAt      time.Time `gorm:"column:arrival_at"`
	AvailableSeats int       `gorm:"column:available_seats"`
	BasePrice      float64   `gorm:"column:base_price"`
	Status         string    `gorm:"column:status"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (FlightRow) TableName() string { return "flights" }

func (r FlightRow) toDomain(jet JetRow) domain.Flight {
	return domain.Flight{
		ID:             r.ID,
		Jet:            jet.ToDomain(),
		Origin:         r.Origin,
		Destination:    r.Destination,
		DepartureAt:    r.DepartureAt,
		ArrivalAt:      r.ArrivalAt,
		AvailableSeats: r.AvailableSeats,
		BasePrice:      r.BasePrice,
		Status:         domain.FlightStatus(r.Status),
	}
}

// OfferRow maps the jetshare_offers table.
type OfferRow struct {
	ID                   string    `gorm:"primaryKey;column:id"`
	CreatorID            string    `gorm:"column:creator_id;index"`
	MatchedUserID        string    `gorm:"column:matched_user_id"`
	Departure            string    `gorm:"column:departure"`
	Arrival              string    `gorm:"column:arrival"`
	FlightDate           time.Time `gorm:"column:flight_date"`
	AircraftModel        string    `gorm:"column:aircraft_model"`
	TotalFlightCost      float64   `gorm:"column:total_flight_cost"`
	RequestedShareAmount float64   `gorm:"column:requested_share_amount"`
	Status               string    `gorm:"column:status;index"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (OfferRow) TableName() string { return "jetshare_offers" }

func (r OfferRow) toDomain() domain.JetShareOffer {
	return domain.JetShareOffer{
		ID:                   r.ID,
		CreatorID:            r.CreatorID,
		MatchedUserID:        r.MatchedUserID,
		Departure:            r.Departure,
		Arrival:              r.Arrival,
		FlightDate:           r.FlightDate,
		AircraftModel:        r.AircraftModel,
		TotalFlightCost:      r.TotalFlightCost,
		RequestedShareAmount: r.RequestedShareAmount,
		Status:               domain.OfferStatus(r.Status),
		CreatedAt:            r.CreatedAt,
	}
}

func offerRowFrom(o domain.JetShareOffer) OfferRow {
	return OfferRow{
		ID:                   o.ID,
		CreatorID:            o.CreatorID,
		MatchedUserID:        o.MatchedUserID,
		Departure:            o.Departure,
		Arrival:              o.Arrival,
		FlightDate:           o.FlightDate,
		AircraftModel:        o.AircraftModel,
		TotalFlightCost:      o.TotalFlightCost,
		RequestedShareAmount: o.RequestedShareAmount,
		Status:               string(o.Status),
		CreatedAt:            o.CreatedAt,
	}
}

// CrewRow maps the crew_members table.
type CrewRow struct {
	ID              string   `gorm:"primaryKey;column:id"`
	Name            string   `gorm:"column:name"`
	Role            string   `gorm:"column:role"`
	Specializations []string `gorm:"column:specializations;serializer:json"`
	Bio             string   `gorm:"column:bio"`
}

func (CrewRow) TableName() string { return "crew_members" }

// ToDomain converts the row to a domain entity.
func (r CrewRow) ToDomain() domain.CrewMember {
	return domain.CrewMember{
		ID:              r.ID,
		Name:            r.Name,
		Role:            r.Role,
		Specializations: r.Specializations,
		Bio:             r.Bio,
	}
}

// TokenRow maps the fractional_tokens table.
type TokenRow struct {
	ID       string  `gorm:"primaryKey;column:id"`
	OwnerID  string  `gorm:"column:owner_id;index"`
	JetID    string  `gorm:"column:jet_id;index"`
	Share    float64 `gorm:"column:share"`
	TokenRef string  `gorm:"column:token_ref"`
}

func (TokenRow) TableName() string { return "fractional_tokens" }

// ToDomain converts the row to a domain entity.
func (r TokenRow) ToDomain() domain.FractionalToken {
	return domain.FractionalToken{
		ID:       r.ID,
		OwnerID:  r.OwnerID,
		JetID:    r.JetID,
		Share:    r.Share,
		TokenRef: r.TokenRef,
	}
}

// SimulationRow maps the simulation_logs table. Params, metrics, and events
// are stored as JSON documents; rows are written once and never updated.
type SimulationRow struct {
	ID        string               `gorm:"primaryKey;column:id"`
	CreatedAt time.Time            `gorm:"column:created_at"`
	Type      string               `gorm:"column:type;index"`
	Params    domain.SimParams     `gorm:"column:params;serializer:json"`
	Metrics   domain.SimMetrics    `gorm:"column:metrics;serializer:json"`
	Events    []domain.SimLogEvent `gorm:"column:events;serializer:json"`
	Summary   string               `gorm:"column:summary"`
}

func (SimulationRow) TableName() string { return "simulation_logs" }

func (r SimulationRow) toDomain() domain.SimResult {
	return domain.SimResult{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Type:      domain.SimType(r.Type),
		Params:    r.Params,
		Metrics:   r.Metrics,
		Events:    r.Events,
		Summary:   r.Summary,
	}
}
