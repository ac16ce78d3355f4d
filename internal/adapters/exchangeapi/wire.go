package exchangeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/shopspring/decimal"
)

// envelope wraps every backend response.
type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) hasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// flexID accepts ids sent as either JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*f = flexID(s)
	return nil
}

// timestamp accepts the layouts the backend has been seen to emit.
type timestamp time.Time

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(strings.TrimSpace(string(b)))
	if err != nil || s == "" {
		*t = timestamp(time.Time{})
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

type rateWire struct {
	ExchangeRateID   int64           `json:"exchangeRateId"`
	Currency         string          `json:"currency"`
	Rate             decimal.Decimal `json:"rate"`
	ChangePercentage decimal.Decimal `json:"changePercentage"`
	ApplyDateTime    timestamp       `json:"applyDateTime"`
}

func (w rateWire) toDomain() (domain.Rate, error) {
	c, err := domain.ParseCurrency(w.Currency)
	if err != nil {
		return domain.Rate{}, err
	}
	return domain.Rate{
		ID:               domain.RateID(w.ExchangeRateID),
		Currency:         c,
		Price:            w.Rate,
		ChangePercentage: w.ChangePercentage,
		AsOf:             time.Time(w.ApplyDateTime),
	}, nil
}

type walletWire struct {
	WalletID int64           `json:"walletId"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

type walletSummaryWire struct {
	TotalKrwBalance decimal.Decimal `json:"totalKrwBalance"`
	Wallets         []walletWire    `json:"wallets"`
}

type quoteWire struct {
	ExchangeRateID int64           `json:"exchangeRateId"`
	KrwAmount      decimal.Decimal `json:"krwAmount"`
	AppliedRate    decimal.Decimal `json:"appliedRate"`
}

type orderWire struct {
	OrderID      int64           `json:"orderId"`
	FromCurrency string          `json:"fromCurrency"`
	FromAmount   decimal.Decimal `json:"fromAmount"`
	ToCurrency   string          `json:"toCurrency"`
	ToAmount     decimal.Decimal `json:"toAmount"`
	AppliedRate  decimal.Decimal `json:"appliedRate"`
	OrderedAt    timestamp       `json:"orderedAt"`
}

func (w orderWire) toDomain() (domain.Order, error) {
	from, err := domain.ParseCurrency(w.FromCurrency)
	if err != nil {
		return domain.Order{}, err
	}
	to, err := domain.ParseCurrency(w.ToCurrency)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		ID:             w.OrderID,
		SourceCurrency: from,
		SourceAmount:   w.FromAmount,
		TargetCurrency: to,
		TargetAmount:   w.ToAmount,
		AppliedRate:    w.AppliedRate,
		CreatedAt:      time.Time(w.OrderedAt),
	}, nil
}

// ordersPageWire is the paginated shape; older backends send a bare array.
type ordersPageWire struct {
	Orders []orderWire `json:"orders"`
	Total  *int        `json:"total"`
}

// orderRequestWire sends amounts as JSON numbers.
type orderRequestWire struct {
	ExchangeRateID int64   `json:"exchangeRateId"`
	FromCurrency   string  `json:"fromCurrency"`
	ToCurrency     string  `json:"toCurrency"`
	ForexAmount    float64 `json:"forexAmount"`
}

type loginWire struct {
	MemberID flexID `json:"memberId"`
	Token    string `json:"token"`
}
