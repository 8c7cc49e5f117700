// Package core provides money rounding and formatting utilities.
//
// Sums are accumulated with native float64 addition. Rounding happens once,
// when a total is displayed: the float is taken at its shortest decimal
// representation and rounded half away from zero at the cent boundary.
package core

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is prefixed to formatted amounts.
const DefaultCurrencySymbol = "$"

// Round2 rounds v to two decimals for display.
//
// Examples:
//
//	Round2(2.0099999999999998) -> 2.01
//	Round2(0.125)              -> 0.13
//	Round2(-0.125)             -> -0.13
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatAmount renders v with exactly two decimals ("2.01").
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatCurrency renders v as a currency string, e.g. "$2.01" or "-$3.50".
func FormatCurrency(v float64, symbol string) string {
	s := FormatAmount(math.Abs(v))
	if v < 0 && s != "0.00" {
		return "-" + symbol + s
	}
	return symbol + s
}
