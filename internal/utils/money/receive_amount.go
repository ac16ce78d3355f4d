// Package money holds the exchange arithmetic shared by quotes and estimates.
package money

import (
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ComputationPlaces is the precision every computed amount is rounded to,
// regardless of currency. Per-currency precision is a display concern.
const ComputationPlaces int32 = 2

// ReceiveAmount converts amount at rate and rounds the product to two decimals.
// Example: ReceiveAmount(100, 1320.50) == 132050
// Example: ReceiveAmount(0.01, 1320.50) == 13.21
func ReceiveAmount(amount, rate decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		return decimal.Zero
	}
	return Round(amount.Mul(rate))
}

// Round applies the computation rounding rule (half away from zero, two places).
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(ComputationPlaces)
}

// RoundToCurrency rounds to the display precision of currency (KRW 0, USD 2, JPY 0).
func RoundToCurrency(amount decimal.Decimal, currency domain.Currency) decimal.Decimal {
	return amount.Round(currency.Decimals())
}
