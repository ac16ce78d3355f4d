package dto

import (
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListSubmissionsParams binds GET /api/exchange/submissions.
type ListSubmissionsParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SubmissionResponse is one journal entry.
type SubmissionResponse struct {
	SubmissionID   string          `json:"submissionId"`
	ExchangeRateID int64           `json:"exchangeRateId,omitempty"`
	FromCurrency   string          `json:"fromCurrency,omitempty"`
	ToCurrency     string          `json:"toCurrency,omitempty"`
	ForexAmount    decimal.Decimal `json:"forexAmount"`
	Status         string          `json:"status"`
	ErrorKind      string          `json:"errorKind,omitempty"`
	Message        string          `json:"message"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ToSubmissionResponses converts journal records.
func ToSubmissionResponses(records []domain.SubmissionRecord) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, SubmissionResponse{
			SubmissionID:   r.SubmissionID,
			ExchangeRateID: int64(r.RateID),
			FromCurrency:   string(r.SourceCurrency),
			ToCurrency:     string(r.TargetCurrency),
			ForexAmount:    r.Amount,
			Status:         string(r.Status),
			ErrorKind:      r.ErrorKind,
			Message:        r.Message,
			CreatedAt:      r.CreatedAt,
		})
	}
	return out
}
