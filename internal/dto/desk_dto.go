package dto

import (
	"strings"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
)

// SetAmountRequest carries the amount exactly as typed.
type SetAmountRequest struct {
	Amount string `json:"amount" binding:"max=32"`
}

// SetSelectionRequest replaces the whole selection at once.
type SetSelectionRequest struct {
	FromCurrency string `json:"fromCurrency" binding:"required,currency"`
	ToCurrency   string `json:"toCurrency" binding:"required,currency"`
	Tab          string `json:"tab" binding:"omitempty,oneof=receive send"`
}

// ToDomain converts the request into a selection.
func (r SetSelectionRequest) ToDomain() domain.Selection {
	return domain.Selection{
		Source: domain.Currency(strings.ToUpper(r.FromCurrency)),
		Target: domain.Currency(strings.ToUpper(r.ToCurrency)),
		Tab:    domain.Tab(r.Tab),
	}
}

// DeskSubmitResponse is the form after a submission and how the submission ended.
type DeskSubmitResponse struct {
	Desk   portssvc.DeskSnapshot   `json:"desk"`
	Result domain.SubmissionResult `json:"result"`
}
