package analysis

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatCount renders a rounded whole number with thousands separators, e.g. "12,345".
func formatCount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(orZero(v))))
}
