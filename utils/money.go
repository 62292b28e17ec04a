package utils

import "github.com/shopspring/decimal"

// FormatMoney renders an amount with exactly two fraction digits.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	if symbol == "" {
		return amount.StringFixed(2)
	}
	return symbol + " " + amount.StringFixed(2)
}
