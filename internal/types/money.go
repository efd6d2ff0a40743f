package types

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundMinorUnit rounds an amount to the operating currency's minor unit
// (2 decimal places) using HALF_UP semantics. Rounding is applied per line,
// never once on an aggregate, so every line amount is independently
// reproducible for audit.
func RoundMinorUnit(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// TaxAmount computes the rounded tax for a net amount at a percentage rate,
// e.g. 600 at 23 -> 138.00.
func TaxAmount(net decimal.Decimal, percentage decimal.Decimal) decimal.Decimal {
	return RoundMinorUnit(net.Mul(percentage).Div(hundred))
}
