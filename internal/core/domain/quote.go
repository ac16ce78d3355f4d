package domain

import (
	"github.com/shopspring/decimal"
)

// QuoteKey is the exact tuple a quote is priced for. Any change produces a new key.
type QuoteKey struct {
	Source Currency
	Target Currency
	Amount decimal.Decimal
}

// Equal compares keys by value; decimal amounts compare numerically.
func (k QuoteKey) Equal(other QuoteKey) bool {
	return k.Source == other.Source && k.Target == other.Target && k.Amount.Equal(other.Amount)
}

// Segments renders the key as cache key segments.
func (k QuoteKey) Segments() []string {
	return []string{string(k.Source), string(k.Target), k.Amount.String()}
}

// Quote is a derived, ephemeral price for one QuoteKey.
type Quote struct {
	RateID         RateID          `json:"exchangeRateId,omitempty"`
	SourceCurrency Currency        `json:"fromCurrency"`
	TargetCurrency Currency        `json:"toCurrency"`
	Amount         decimal.Decimal `json:"forexAmount"`
	ReceiveAmount  decimal.Decimal `json:"receiveAmount"`
	AppliedRate    decimal.Decimal `json:"appliedRate"`
}

// Key returns the tuple this quote was priced for.
func (q Quote) Key() QuoteKey {
	return QuoteKey{Source: q.SourceCurrency, Target: q.TargetCurrency, Amount: q.Amount}
}
