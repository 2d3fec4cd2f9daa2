// README: Common money value object used across modules. Amounts are minor units (pence).
package types

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const CurrencyGBP = "GBP"

var currencySymbols = map[string]string{
	CurrencyGBP: "£",
}

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func GBP(pence int64) Money {
	return Money{Amount: pence, Currency: CurrencyGBP}
}

// Symbol returns the display symbol, falling back to the ISO code.
func (m Money) Symbol() string {
	if s, ok := currencySymbols[m.Currency]; ok {
		return s
	}
	return m.Currency
}

// String renders "£1,234.56".
func (m Money) String() string {
	return FormatMinor(m.Symbol(), m.Amount)
}

var ukPrinter = message.NewPrinter(language.BritishEnglish)

// FormatMinor formats a minor-unit amount with two decimals and grouped
// major units.
func FormatMinor(symbol string, minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return ukPrinter.Sprintf("%s%s%d.%02d", sign, symbol, minor/100, minor%100)
}

// ToMinor converts a major-unit float to minor units, rounding half away from zero.
func ToMinor(major float64) int64 {
	return int64(math.Round(major * 100))
}

// CeilToMajor rounds minor units up to the next whole major unit.
func CeilToMajor(minor int64) int64 {
	if minor%100 == 0 {
		return minor
	}
	if minor < 0 {
		return minor - minor%100
	}
	return (minor/100 + 1) * 100
}

// PercentOf returns pct percent of minor, rounded half-up to the minor unit.
func PercentOf(minor int64, pct float64) int64 {
	return int64(math.Round(float64(minor) * pct / 100))
}
