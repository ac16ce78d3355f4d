package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mode is the direction of an exchange relative to the home currency.
type Mode string

const (
	// ModeBuy converts home currency into a foreign currency.
	ModeBuy Mode = "buy"
	// ModeSell converts a foreign currency into home currency.
	ModeSell Mode = "sell"
)

// IsValid reports whether m is buy or sell.
func (m Mode) IsValid() bool {
	return m == ModeBuy || m == ModeSell
}

// Pair returns the source and target currencies for trading foreign in this mode.
func (m Mode) Pair(foreign Currency) (source, target Currency) {
	if m == ModeSell {
		return foreign, HomeCurrency
	}
	return HomeCurrency, foreign
}

// OrderRequest is what the backend needs to execute an exchange.
// Amount is always denominated in the foreign currency.
type OrderRequest struct {
	RateID         RateID          `json:"exchangeRateId"`
	SourceCurrency Currency        `json:"fromCurrency"`
	TargetCurrency Currency        `json:"toCurrency"`
	Amount         decimal.Decimal `json:"forexAmount"`
}

// ForeignCurrency returns the non-home side of the request.
func (r OrderRequest) ForeignCurrency() Currency {
	if r.SourceCurrency.IsHome() {
		return r.TargetCurrency
	}
	return r.SourceCurrency
}

// Order is an executed exchange as recorded by the backend.
type Order struct {
	ID             int64           `json:"orderId"`
	SourceCurrency Currency        `json:"fromCurrency"`
	SourceAmount   decimal.Decimal `json:"fromAmount"`
	TargetCurrency Currency        `json:"toCurrency"`
	TargetAmount   decimal.Decimal `json:"toAmount"`
	AppliedRate    decimal.Decimal `json:"appliedRate"`
	CreatedAt      time.Time       `json:"orderedAt"`
}

// OrdersPage is one page of order history.
type OrdersPage struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// TotalPages is the number of pages of Limit orders needed to hold Total.
func (p OrdersPage) TotalPages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}
