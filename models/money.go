package models

import "github.com/shopspring/decimal"

func init() {
	// Currency amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
