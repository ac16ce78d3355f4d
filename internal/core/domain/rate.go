package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateID is the backend's surrogate key for one rate snapshot. It is not stable
// between refreshes, even when the price is unchanged.
type RateID int64

// Rate is the price of one unit of Currency in the home currency.
type Rate struct {
	ID               RateID          `json:"exchangeRateId"`
	Currency         Currency        `json:"currency"`
	Price            decimal.Decimal `json:"rate"`
	ChangePercentage decimal.Decimal `json:"changePercentage"`
	AsOf             time.Time       `json:"applyDateTime"`
}

// FindRate returns the entry for currency, if the collection has one.
func FindRate(rates []Rate, currency Currency) (Rate, bool) {
	for _, r := range rates {
		if r.Currency == currency {
			return r, true
		}
	}
	return Rate{}, false
}

// Direction classifies the sign of the percentage change.
func (r Rate) Direction() string {
	switch r.ChangePercentage.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	default:
		return "stable"
	}
}
