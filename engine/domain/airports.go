package domain

// KnownAirports maps airport/metro codes to display cities. Used to render
// human-readable locations; unknown codes are rendered as-is.
var KnownAirports = map[string]string{
	"NYC": "New York",
	"TEB": "Teterboro",
	"JFK": "New York",
	"LAX": "Los Angeles",
	"VNY": "Van Nuys",
	"MIA": "Miami",
	"OPF": "Miami-Opa Locka",
	"SFO": "San Francisco",
	"LAS": "Las Vegas",
	"ASE": "Aspen",
	"EGE": "Vail-Eagle",
	"DAL": "Dallas",
	"HOU": "Houston",
	"CHI": "Chicago",
	"PBI": "West Palm Beach",
	"BOS": "Boston",
	"DCA": "Washington",
	"SDL": "Scottsdale",
	"LHR": "London",
	"LTN": "London-Luton",
	"CDG": "Paris",
	"LBG": "Paris-Le Bourget",
	"GVA": "Geneva",
	"NCE": "Nice",
	"DXB": "Dubai",
}

// CityForCode returns the display city for a code, or the code itself when unknown.
func CityForCode(code string) string {
	if city, ok := KnownAirports[code]; ok {
		return city
	}
	return code
}
