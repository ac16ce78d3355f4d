package services

import (
	"context"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DeskSnapshot is the render state of one exchange form.
type DeskSnapshot struct {
	DeskID          string                `json:"deskId"`
	Selection       domain.Selection      `json:"selection"`
	Mode            domain.Mode           `json:"mode,omitempty"`
	Currency        domain.Currency       `json:"currency,omitempty"`
	AmountText      string                `json:"amountText"`
	Amount          decimal.Decimal       `json:"amount"`
	DebouncedAmount decimal.Decimal       `json:"debouncedAmount"`
	Debouncing      bool                  `json:"debouncing"`
	Quote           *domain.Quote         `json:"quote,omitempty"`
	QuoteStatus     string                `json:"quoteStatus"`
	QuoteError      string                `json:"quoteError,omitempty"`
	QuoteDisplay    string                `json:"quoteDisplay,omitempty"`
	Estimate        *decimal.Decimal      `json:"estimate,omitempty"`
	EstimateDisplay string                `json:"estimateDisplay,omitempty"`
	Rate            *domain.Rate          `json:"rate,omitempty"`
	CanSubmit       bool                  `json:"canSubmit"`
	Submitting      bool                  `json:"submitting"`
	Notifications   []domain.Notification `json:"notifications,omitempty"`
	Navigate        domain.Route          `json:"navigate,omitempty"`
}

// DeskSvcFacade is the per-member server-side exchange form
type DeskSvcFacade interface {
	// Open creates the member's form, replacing any previous one.
	Open(ctx context.Context) (DeskSnapshot, error)
	Snapshot(ctx context.Context) (DeskSnapshot, error)
	SetAmount(ctx context.Context, text string) (DeskSnapshot, error)
	SetSelection(ctx context.Context, sel domain.Selection) (DeskSnapshot, error)
	Swap(ctx context.Context) (DeskSnapshot, error)
	Reset(ctx context.Context) (DeskSnapshot, error)
	// Submit runs the submission workflow and drains the resulting feedback.
	Submit(ctx context.Context) (DeskSnapshot, domain.SubmissionResult, error)
	Close(ctx context.Context) error
}
