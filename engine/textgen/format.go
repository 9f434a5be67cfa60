package textgen

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// currency renders a dollar amount with thousands separators, e.g. "$10,000"
// or "$2,500.50". Cents appear only when the amount is not whole.
func currency(v float64) string {
	if v == math.Trunc(v) {
		return printer.Sprintf("$%d", int64(v))
	}
	return printer.Sprintf("$%.2f", v)
}

// percent renders a percentage with one decimal, e.g. "72.5%".
func percent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}

// date renders a timestamp as a locale-readable date.
func date(t time.Time) string {
	return t.Format("January 2, 2006")
}
