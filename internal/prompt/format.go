package prompt

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const rupee = "₹"

var indianEnglish = language.MustParse("en-IN")

// FormatAmount renders d with en-IN digit grouping and at most three
// fraction digits, e.g. 150000.5 -> "1,50,000.5".
func FormatAmount(d decimal.Decimal) string {
	// Printers buffer internally, so one per call.
	p := message.NewPrinter(indianEnglish)
	return p.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(3)))
}

func rupees(d decimal.Decimal) string {
	return rupee + FormatAmount(d)
}
