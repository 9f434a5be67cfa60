package domain

import (
	"fmt"
	"strings"
)

// maxVirtualUsers bounds a simulation run; anything larger is a typo.
const maxVirtualUsers = 1_000_000

// ValidateOffer checks a JetShareOffer before it enters the system.
func ValidateOffer(o JetShareOffer) error {
	if strings.TrimSpace(o.Departure) == "" {
		return NewValidationError("departure", o.Departure, ErrInvalidOffer)
	}
	if strings.TrimSpace(o.Arrival) == "" {
		return NewValidationError("arrival", o.Arrival, ErrInvalidOffer)
	}
	if o.CreatorID == "" {
		return NewValidationError("creator_id", o.CreatorID, ErrInvalidOffer)
	}
	if o.FlightDate.IsZero() {
		return NewValidationError("flight_date", "", ErrInvalidOffer)
	}
	if o.TotalFlightCost <= 0 {
		return NewValidationError("total_flight_cost", fmt.Sprintf("%g", o.TotalFlightCost), ErrInvalidOffer)
	}
	if o.RequestedShareAmount <= 0 || o.RequestedShareAmount > o.TotalFlightCost {
		return NewValidationError("requested_share_amount", fmt.Sprintf("%g", o.RequestedShareAmount), ErrInvalidOffer)
	}
	return nil
}

// ValidateOfferTransition checks a status change, including who may perform it.
// Accepting is open to anyone but the creator; cancelling only to the creator.
func ValidateOfferTransition(o JetShareOffer, next OfferStatus, actingUserID string) error {
	if !o.Status.CanTransitionTo(next) {
		return NewValidationError("status", string(o.Status)+"→"+string(next), ErrInvalidTransition)
	}
	switch next {
	case OfferAccepted:
		if actingUserID == "" || actingUserID == o.CreatorID {
			return NewValidationError("acting_user", actingUserID, ErrNotAuthorized)
		}
	case OfferCancelled:
		if actingUserID != o.CreatorID {
			return NewValidationError("acting_user", actingUserID, ErrNotAuthorized)
		}
	case OfferCompleted:
		if actingUserID != o.CreatorID && actingUserID != o.MatchedUserID {
			return NewValidationError("acting_user", actingUserID, ErrNotAuthorized)
		}
	}
	return nil
}

// ValidateSimParams checks simulation inputs before a run starts.
func ValidateSimParams(p SimParams) error {
	if !ValidSimTypes[p.Type] {
		return NewValidationError("type", string(p.Type), ErrInvalidSimParams)
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return NewValidationError("date_range", "", ErrInvalidSimParams)
	}
	if p.EndDate.Before(p.StartDate) {
		return NewValidationError("date_range", p.EndDate.Format("2006-01-02"), ErrInvalidSimParams)
	}
	if p.VirtualUsers <= 0 || p.VirtualUsers > maxVirtualUsers {
		return NewValidationError("virtual_users", fmt.Sprintf("%d", p.VirtualUsers), ErrInvalidSimParams)
	}
	return nil
}
