package dto

import (
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/utils"
	"github.com/shopspring/decimal"
)

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ExchangeRateID   int64           `json:"exchangeRateId"`
	Currency         string          `json:"currency"`
	Rate             decimal.Decimal `json:"rate"`
	ChangePercentage decimal.Decimal `json:"changePercentage"`
	Direction        string          `json:"direction"` // up, down or stable
	ApplyDateTime    time.Time       `json:"applyDateTime"`
	RateDisplay      string          `json:"rateDisplay"`
	ChangeDisplay    string          `json:"changeDisplay"`
}

// ExchangeRatesResponse is the rate collection plus the cache state it came from.
type ExchangeRatesResponse struct {
	Rates     []ExchangeRateResponse `json:"rates"`
	IsStale   bool                   `json:"isStale"`
	FetchedAt *time.Time             `json:"fetchedAt,omitempty"`
}

// ToExchangeRateResponse converts a domain.Rate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate domain.Rate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   int64(rate.ID),
		Currency:         rate.Currency.String(),
		Rate:             rate.Price,
		ChangePercentage: rate.ChangePercentage,
		Direction:        rate.Direction(),
		ApplyDateTime:    rate.AsOf,
		RateDisplay:      utils.FormatRate(rate.Price),
		ChangeDisplay:    utils.FormatChange(rate.ChangePercentage),
	}
}

// ToExchangeRatesResponse converts the rate collection.
func ToExchangeRatesResponse(rates []domain.Rate, isStale bool, fetchedAt time.Time) ExchangeRatesResponse {
	resp := ExchangeRatesResponse{
		Rates:   make([]ExchangeRateResponse, 0, len(rates)),
		IsStale: isStale,
	}
	for _, r := range rates {
		resp.Rates = append(resp.Rates, ToExchangeRateResponse(r))
	}
	if !fetchedAt.IsZero() {
		resp.FetchedAt = &fetchedAt
	}
	return resp
}
