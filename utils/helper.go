package utils

import (
	"github.com/shopspring/decimal"
)

// RoundMoney rounds to 2 decimal places. Only tax amounts are rounded;
// quantity x price products are carried unrounded.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
