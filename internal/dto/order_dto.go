package dto

import (
	"strings"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/utils"
	"github.com/shopspring/decimal"
)

// ListOrdersParams binds GET /api/orders. Zero means the default.
type ListOrdersParams struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// OrderResponse is one executed exchange with display strings.
type OrderResponse struct {
	OrderID            int64           `json:"orderId"`
	FromCurrency       string          `json:"fromCurrency"`
	FromAmount         decimal.Decimal `json:"fromAmount"`
	FromAmountDisplay  string          `json:"fromAmountDisplay"`
	ToCurrency         string          `json:"toCurrency"`
	ToAmount           decimal.Decimal `json:"toAmount"`
	ToAmountDisplay    string          `json:"toAmountDisplay"`
	AppliedRate        decimal.Decimal `json:"appliedRate"`
	AppliedRateDisplay string          `json:"appliedRateDisplay"`
	OrderedAt          time.Time       `json:"orderedAt"`
	OrderedAtDisplay   string          `json:"orderedAtDisplay"`
}

// OrdersPageResponse is one page of order history.
type OrdersPageResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
	IsStale    bool            `json:"isStale"`
}

// ToOrderResponse converts a domain.Order.
func ToOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		OrderID:            o.ID,
		FromCurrency:       o.SourceCurrency.String(),
		FromAmount:         o.SourceAmount,
		FromAmountDisplay:  utils.FormatCurrency(o.SourceAmount, o.SourceCurrency),
		ToCurrency:         o.TargetCurrency.String(),
		ToAmount:           o.TargetAmount,
		ToAmountDisplay:    utils.FormatCurrency(o.TargetAmount, o.TargetCurrency),
		AppliedRate:        o.AppliedRate,
		AppliedRateDisplay: utils.FormatRate(o.AppliedRate),
		OrderedAt:          o.CreatedAt,
		OrderedAtDisplay:   utils.FormatDateTime(o.CreatedAt, nil),
	}
}

// ToOrdersPageResponse converts a domain.OrdersPage.
func ToOrdersPageResponse(p domain.OrdersPage, isStale bool) OrdersPageResponse {
	resp := OrdersPageResponse{
		Orders:     make([]OrderResponse, 0, len(p.Orders)),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(),
		IsStale:    isStale,
	}
	for _, o := range p.Orders {
		resp.Orders = append(resp.Orders, ToOrderResponse(o))
	}
	return resp
}

// PlaceOrderRequest is the body of POST /api/exchange.
type PlaceOrderRequest struct {
	ExchangeRateID int64           `json:"exchangeRateId" binding:"required,gt=0"`
	FromCurrency   string          `json:"fromCurrency" binding:"required,currency"`
	ToCurrency     string          `json:"toCurrency" binding:"required,currency,nefield=FromCurrency"`
	ForexAmount    decimal.Decimal `json:"forexAmount" swaggertype:"string"`
}

// ToDomain converts the request into an order. Currency codes were validated at binding.
func (r PlaceOrderRequest) ToDomain() domain.OrderRequest {
	return domain.OrderRequest{
		RateID:         domain.RateID(r.ExchangeRateID),
		SourceCurrency: domain.Currency(strings.ToUpper(r.FromCurrency)),
		TargetCurrency: domain.Currency(strings.ToUpper(r.ToCurrency)),
		Amount:         r.ForexAmount,
	}
}

// ExchangeResponse is the outcome of a submission together with the feedback it produced.
type ExchangeResponse struct {
	Result        domain.SubmissionResult `json:"result"`
	Notifications []domain.Notification   `json:"notifications"`
	Navigate      domain.Route            `json:"navigate,omitempty"`
}
