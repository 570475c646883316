package http

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.English)

// FormatCurrency renders v as whole dollars with thousands separators, e.g. $452,600.
func FormatCurrency(v float64) string {
	rounded := math.RoundToEven(v)
	if rounded == 0 {
		return "$0"
	}
	digits := currencyPrinter.Sprintf("%.0f", math.Abs(rounded))
	if rounded < 0 {
		return "-$" + digits
	}
	return "$" + digits
}
