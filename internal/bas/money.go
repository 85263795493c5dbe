package bas

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	moneyNoise  = regexp.MustCompile(`[^0-9.\-]`)
	moneyPrefix = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)
)

// ParseMoney reads a formatted amount such as "$148,500.00" as an exact
// decimal.
//
// Every character other than digits, '.' and '-' is dropped, then the longest
// leading number is parsed ("12.5.3" reads as 12.5). Text that does not start
// with a number after cleaning reads as zero; ParseMoney never fails.
//
// Accounting-style negatives such as "(1,200.00)" lose their sign, as they do
// in the reports this is used on.
func ParseMoney(text string) decimal.Decimal {
	amount, _ := parseMoney(text)
	return amount
}

// parseMoney is ParseMoney that also reports whether a number was found.
func parseMoney(text string) (decimal.Decimal, bool) {
	cleaned := moneyNoise.ReplaceAllString(text, "")
	match := moneyPrefix.FindString(cleaned)
	if match == "" {
		return decimal.Zero, false
	}

	match = strings.TrimSuffix(match, ".")
	switch {
	case strings.HasPrefix(match, "-."):
		match = "-0" + match[1:]
	case strings.HasPrefix(match, "."):
		match = "0" + match
	}

	amount, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
