package dto

import (
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/utils"
	"github.com/shopspring/decimal"
)

// QuoteQuery binds GET /api/quote.
type QuoteQuery struct {
	FromCurrency string `form:"fromCurrency" binding:"required,currency"`
	ToCurrency   string `form:"toCurrency" binding:"required,currency,nefield=FromCurrency"`
	ForexAmount  string `form:"forexAmount" binding:"required"`
}

// QuoteResponse is the state of the quote read for one tuple.
// Status is idle, pending, success or error.
type QuoteResponse struct {
	Status             string           `json:"status"`
	ExchangeRateID     int64            `json:"exchangeRateId,omitempty"`
	FromCurrency       string           `json:"fromCurrency"`
	ToCurrency         string           `json:"toCurrency"`
	ForexAmount        decimal.Decimal  `json:"forexAmount"`
	KrwAmount          *decimal.Decimal `json:"krwAmount,omitempty"`
	KrwAmountDisplay   string           `json:"krwAmountDisplay,omitempty"`
	AppliedRate        *decimal.Decimal `json:"appliedRate,omitempty"`
	AppliedRateDisplay string           `json:"appliedRateDisplay,omitempty"`
	IsStale            bool             `json:"isStale"`
}

// ToQuoteResponse builds the response for key from the quote state fields.
func ToQuoteResponse(key domain.QuoteKey, status string, quote *domain.Quote, isStale bool) QuoteResponse {
	resp := QuoteResponse{
		Status:       status,
		FromCurrency: key.Source.String(),
		ToCurrency:   key.Target.String(),
		ForexAmount:  key.Amount,
		IsStale:      isStale,
	}
	if quote == nil {
		return resp
	}
	receive, rate := quote.ReceiveAmount, quote.AppliedRate
	resp.ExchangeRateID = int64(quote.RateID)
	resp.KrwAmount = &receive
	resp.KrwAmountDisplay = utils.FormatCurrency(receive, domain.HomeCurrency)
	resp.AppliedRate = &rate
	resp.AppliedRateDisplay = utils.FormatRate(rate)
	return resp
}
