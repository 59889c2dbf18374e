// Package currency formats monetary amounts for display.
// Budget values are carried through the system as numeric strings to avoid
// floating-point precision loss; formatting is the only place they are
// interpreted numerically.
package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var enIN = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders an amount using the Indian tiered abbreviation scheme:
// crores above 1,00,00,000, lakhs above 1,00,000, thousands above 1,000,
// and a locale-grouped integer below that.
//
// The output is a display contract shared with the dashboard; callers rely
// on exact string equality at the tier boundaries.
func FormatINR(amount float64) string {
	switch {
	case amount >= 10000000:
		return fmt.Sprintf("₹%.1fCr", amount/10000000)
	case amount >= 100000:
		return fmt.Sprintf("₹%.1fL", amount/100000)
	case amount >= 1000:
		return fmt.Sprintf("₹%.1fK", amount/1000)
	default:
		if amount == math.Trunc(amount) {
			return enIN.Sprintf("₹%d", int64(amount))
		}
		return "₹" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
}

// FormatBudget parses a stored numeric-string budget and formats it.
// Blank input yields a blank string; unparseable input is returned as-is so
// a bad stored value never breaks a listing.
func FormatBudget(budget string) string {
	trimmed := strings.TrimSpace(budget)
	if trimmed == "" {
		return ""
	}
	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return trimmed
	}
	return FormatINR(amount)
}
