// Package textgen builds deterministic natural-language summaries of domain
// entities for embedding. Builders are pure: identical input yields identical
// output, and missing optional fields are omitted rather than rendered empty.
package textgen

import (
	"fmt"
	"strings"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// Kind tags an Entity so dispatch is explicit rather than structural.
type Kind string

const (
	KindProfile    Kind = "profile"
	KindFlight     Kind = "flight"
	KindOffer      Kind = "offer"
	KindCrew       Kind = "crew"
	KindSimulation Kind = "simulation"
)

// Entity is a tagged union over the embeddable domain types. Exactly the
// field selected by Kind is read; the rest are ignored.
type Entity struct {
	Kind    Kind
	Profile *domain.EnrichedProfile
	Flight  *domain.Flight
	Offer   *domain.JetShareOffer
	Crew    *domain.CrewMember
	Sim     *domain.SimResult
}

// ProfileEntity wraps a profile for Generate.
func ProfileEntity(p *domain.EnrichedProfile) Entity { return Entity{Kind: KindProfile, Profile: p} }

// FlightEntity wraps a flight for Generate.
func FlightEntity(f *domain.Flight) Entity { return Entity{Kind: KindFlight, Flight: f} }

// OfferEntity wraps a JetShare offer for Generate.
func OfferEntity(o *domain.JetShareOffer) Entity { return Entity{Kind: KindOffer, Offer: o} }

// CrewEntity wraps a crew member for Generate.
func CrewEntity(c *domain.CrewMember) Entity { return Entity{Kind: KindCrew, Crew: c} }

// SimulationEntity wraps a simulation result for Generate.
func SimulationEntity(s *domain.SimResult) Entity { return Entity{Kind: KindSimulation, Sim: s} }

// Generate dispatches on the entity tag and returns its summary string.
// Unknown or mismatched entities yield an empty string.
func Generate(e Entity) string {
	switch e.Kind {
	case KindProfile:
		if e.Profile != nil {
			return ProfileText(*e.Profile)
		}
	case KindFlight:
		if e.Flight != nil {
			return FlightText(*e.Flight)
		}
	case KindOffer:
		if e.Offer != nil {
			return OfferText(*e.Offer)
		}
	case KindCrew:
		if e.Crew != nil {
			return CrewText(*e.Crew)
		}
	case KindSimulation:
		if e.Sim != nil {
			return SimulationText(*e.Sim)
		}
	}
	return ""
}

// ProfileText summarises a traveler profile for the users namespace.
func ProfileText(p domain.EnrichedProfile) string {
	var b strings.Builder

	name := p.Name
	if name == "" {
		name = "Traveler " + p.ID
	}
	b.WriteString(name)

	if p.JobTitle != "" && p.Company != "" {
		fmt.Fprintf(&b, " is a %s at %s", p.JobTitle, p.Company)
	} else if p.JobTitle != "" {
		fmt.Fprintf(&b, " is a %s", p.JobTitle)
	}
	if p.Industry != "" {
		fmt.Fprintf(&b, " working in the %s industry", p.Industry)
	}
	b.WriteString(".")

	if len(p.PreferredDestinations) > 0 {
		fmt.Fprintf(&b, " Preferred destinations: %s.", joinList(p.PreferredDestinations))
	}
	if len(p.TripTypes) > 0 {
		fmt.Fprintf(&b, " Typical trips: %s.", joinList(p.TripTypes))
	}
	if len(p.Languages) > 0 {
		fmt.Fprintf(&b, " Speaks %s.", joinList(p.Languages))
	}
	if len(p.AmenityPrefs) > 0 {
		fmt.Fprintf(&b, " Values onboard %s.", joinList(p.AmenityPrefs))
	}
	if p.Budget != nil {
		fmt.Fprintf(&b, " Budget %s to %s per flight.", currency(p.Budget.Min), currency(p.Budget.Max))
	}
	if len(p.Expertise) > 0 {
		fmt.Fprintf(&b, " Expertise in %s.", joinList(p.Expertise))
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(&b, " Interested in %s.", joinList(p.Interests))
	}
	if len(p.TravelHistory) > 0 {
		fmt.Fprintf(&b, " Past trips: %s.", joinRoutes(p.TravelHistory))
	}
	return b.String()
}

// FlightText summarises a flight for the flights namespace.
func FlightText(f domain.Flight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Flight from %s to %s", location(f.Origin), location(f.Destination))
	if !f.DepartureAt.IsZero() {
		fmt.Fprintf(&b, " departing %s", date(f.DepartureAt))
	}
	b.WriteString(".")

	if f.Jet.Model != "" {
		b.WriteString(" Aircraft: ")
		if f.Jet.Manufacturer != "" {
			b.WriteString(f.Jet.Manufacturer + " ")
		}
		b.WriteString(f.Jet.Model)
		if f.Jet.Capacity > 0 {
			fmt.Fprintf(&b, " seating %d", f.Jet.Capacity)
		}
		b.WriteString(".")
	}
	if f.AvailableSeats > 0 {
		fmt.Fprintf(&b, " %d seats available", f.AvailableSeats)
		if f.BasePrice > 0 {
			fmt.Fprintf(&b, " at %s per seat", currency(f.BasePrice))
		}
		b.WriteString(".")
	} else if f.BasePrice > 0 {
		fmt.Fprintf(&b, " Base price %s per seat.", currency(f.BasePrice))
	}
	if len(f.Jet.Amenities) > 0 {
		fmt.Fprintf(&b, " Amenities: %s.", joinList(f.Jet.Amenities))
	}
	if f.Status != "" {
		fmt.Fprintf(&b, " Status: %s.", f.Status)
	}
	return b.String()
}

// OfferText summarises a JetShare cost-sharing offer for the offers namespace.
func OfferText(o domain.JetShareOffer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "JetShare offer from %s to %s", location(o.Departure), location(o.Arrival))
	if !o.FlightDate.IsZero() {
		fmt.Fprintf(&b, " on %s", date(o.FlightDate))
	}
	b.WriteString(".")

	if o.TotalFlightCost > 0 {
		fmt.Fprintf(&b, " Total flight cost %s", currency(o.TotalFlightCost))
		if o.RequestedShareAmount > 0 {
			fmt.Fprintf(&b, " with a requested share of %s", currency(o.RequestedShareAmount))
		}
		b.WriteString(".")
	} else if o.RequestedShareAmount > 0 {
		fmt.Fprintf(&b, " Requested share %s.", currency(o.RequestedShareAmount))
	}
	if o.AircraftModel != "" {
		fmt.Fprintf(&b, " Aircraft: %s.", o.AircraftModel)
	}
	if o.Status != "" {
		fmt.Fprintf(&b, " Status: %s.", o.Status)
	}
	return b.String()
}

// CrewText summarises a crew member for the crews namespace.
func CrewText(c domain.CrewMember) string {
	var b strings.Builder
	b.WriteString(c.Name)
	if c.Role != "" {
		fmt.Fprintf(&b, " is a %s", c.Role)
	}
	b.WriteString(".")
	if len(c.Specializations) > 0 {
		fmt.Fprintf(&b, " Specializes in %s.", joinList(c.Specializations))
	}
	if c.Bio != "" {
		b.WriteString(" " + c.Bio)
	}
	return b.String()
}

// SimulationText summarises a simulation run for the simulations namespace.
// It always contains the literal fill-rate and cost-recovery percentages.
func SimulationText(s domain.SimResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Simulation %s run", s.Type)
	if !s.Params.StartDate.IsZero() && !s.Params.EndDate.IsZero() {
		fmt.Fprintf(&b, " covering %s to %s", date(s.Params.StartDate), date(s.Params.EndDate))
	}
	fmt.Fprintf(&b, " with %d virtual users", s.Params.VirtualUsers)
	if s.Params.UseAIMatching {
		b.WriteString(" and AI matching enabled")
	}
	b.WriteString(".")

	fmt.Fprintf(&b, " Achieved a fill rate of %s and cost recovery of %s with revenue of %s.",
		percent(s.Metrics.FillRate), percent(s.Metrics.CostRecovery), currency(s.Metrics.Revenue))

	if len(s.Events) > 0 {
		names := make([]string, len(s.Events))
		for i, ev := range s.Events {
			names[i] = ev.Name
		}
		fmt.Fprintf(&b, " Stages: %s.", joinList(names))
	}
	return b.String()
}

// location renders an airport/metro code with its display city when known.
func location(code string) string {
	city := domain.CityForCode(code)
	if city == code {
		return code
	}
	return fmt.Sprintf("%s (%s)", code, city)
}

// joinRoutes renders travel history as "NYC→LAX, MIA→ASE".
func joinRoutes(records []domain.TravelRecord) string {
	routes := make([]string, len(records))
	for i, r := range records {
		routes[i] = r.Origin + "→" + r.Destination
	}
	return strings.Join(routes, ", ")
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
