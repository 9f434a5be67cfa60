package matching

import (
	"fmt"
	"strings"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// flightReasons explains why a flight matched. Every match gets at least one
// reason; the similarity fallback covers candidates no rule fires for.
func flightReasons(p domain.EnrichedProfile, f domain.Flight, crit Criteria) []string {
	var reasons []string

	for _, dest := range p.PreferredDestinations {
		if equalCode(dest, f.Destination) {
			reasons = append(reasons, fmt.Sprintf("flies to your preferred destination %s", f.Destination))
			break
		}
	}
	if crit.Destination != "" && equalCode(crit.Destination, f.Destination) {
		reasons = append(reasons, fmt.Sprintf("matches your requested destination %s", f.Destination))
	}
	if p.Budget != nil && p.Budget.Contains(f.BasePrice) {
		reasons = append(reasons, "priced within your budget")
	}
	for _, amenity := range p.AmenityPrefs {
		if containsFold(f.Jet.Amenities, amenity) {
			reasons = append(reasons, fmt.Sprintf("aircraft offers %s", strings.ToLower(amenity)))
			break
		}
	}
	for _, trip := range p.TravelHistory {
		if equalCode(trip.Destination, f.Destination) {
			reasons = append(reasons, fmt.Sprintf("you have flown to %s before", f.Destination))
			break
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "strong overall similarity to your travel profile")
	}
	return reasons
}

// companionReasons explains why another traveler matched.
func companionReasons(p, candidate domain.EnrichedProfile) []string {
	var reasons []string

	if p.Industry != "" && strings.EqualFold(p.Industry, candidate.Industry) {
		reasons = append(reasons, fmt.Sprintf("works in your industry (%s)", candidate.Industry))
	}
	if shared := intersectFold(p.PreferredDestinations, candidate.PreferredDestinations); shared != "" {
		reasons = append(reasons, fmt.Sprintf("also prefers traveling to %s (your preferred destination)", shared))
	}
	if shared := intersectFold(p.TripTypes, candidate.TripTypes); shared != "" {
		reasons = append(reasons, fmt.Sprintf("enjoys the same %s trips", strings.ToLower(shared)))
	}
	if shared := intersectFold(p.Interests, candidate.Interests); shared != "" {
		reasons = append(reasons, fmt.Sprintf("shares your interest in %s", strings.ToLower(shared)))
	}
	if shared := intersectFold(p.AmenityPrefs, candidate.AmenityPrefs); shared != "" {
		reasons = append(reasons, fmt.Sprintf("values %s on board too", strings.ToLower(shared)))
	}
	if p.Budget != nil && candidate.Budget != nil &&
		p.Budget.Min <= candidate.Budget.Max && candidate.Budget.Min <= p.Budget.Max {
		reasons = append(reasons, "comparable travel budget")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "strong overall similarity to your travel profile")
	}
	return reasons
}

// offerReasons explains why a JetShare offer matched.
func offerReasons(p domain.EnrichedProfile, o domain.JetShareOffer) []string {
	var reasons []string

	for _, dest := range p.PreferredDestinations {
		if equalCode(dest, o.Arrival) {
			reasons = append(reasons, fmt.Sprintf("heads to your preferred destination %s", o.Arrival))
			break
		}
	}
	if p.Budget != nil && p.Budget.Contains(o.RequestedShareAmount) {
		reasons = append(reasons, "share amount within your budget")
	}
	for _, trip := range p.TravelHistory {
		if equalCode(trip.Destination, o.Arrival) {
			reasons = append(reasons, fmt.Sprintf("you have flown to %s before", o.Arrival))
			break
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "strong overall similarity to your travel profile")
	}
	return reasons
}

func equalCode(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsFold(items []string, want string) bool {
	for _, v := range items {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// intersectFold returns the first element the two lists share, or "".
func intersectFold(a, b []string) string {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return y
			}
		}
	}
	return ""
}
