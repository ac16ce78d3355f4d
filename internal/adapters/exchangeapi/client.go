// Package exchangeapi is the HTTP client for the upstream exchange backend.
package exchangeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	"github.com/SscSPs/exchange_desk/internal/middleware"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
)

// Upstream error codes that map onto a specific kind.
const (
	CodeRateMismatch     = "EXCHANGE_RATE_MISMATCH"
	CodeValidation       = "VALIDATION_ERROR"
	CodeCurrencyMismatch = "CURRENCY_MISMATCH"
	CodeUnauthorized     = "UNAUTHORIZED"
)

// Client talks JSON to the exchange backend. Calls authenticate with the
// session stored in ctx.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ portsrepo.ExchangeAPIFacade = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for baseURL. A non-positive timeout uses ten seconds.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListLatestRates(ctx context.Context) ([]domain.Rate, error) {
	var wire []rateWire
	if err := c.do(ctx, http.MethodGet, "/exchange-rates/latest", nil, nil, &wire); err != nil {
		return nil, err
	}
	rates := make([]domain.Rate, 0, len(wire))
	for _, w := range wire {
		r, err := w.toDomain()
		if err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Skipping rate with unsupported currency", slog.String("currency", w.Currency))
			continue
		}
		rates = append(rates, r)
	}
	return rates, nil
}

func (c *Client) GetWallets(ctx context.Context) (*domain.WalletSummary, error) {
	var wire walletSummaryWire
	if err := c.do(ctx, http.MethodGet, "/wallets", nil, nil, &wire); err != nil {
		return nil, err
	}
	summary := &domain.WalletSummary{
		TotalHomeBalance: wire.TotalKrwBalance,
		Wallets:          make([]domain.Wallet, 0, len(wire.Wallets)),
	}
	for _, w := range wire.Wallets {
		cur, err := domain.ParseCurrency(w.Currency)
		if err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Skipping wallet with unsupported currency", slog.String("currency", w.Currency))
			continue
		}
		summary.Wallets = append(summary.Wallets, domain.Wallet{ID: w.WalletID, Currency: cur, Balance: w.Balance})
	}
	return summary, nil
}

func (c *Client) GetQuote(ctx context.Context, key domain.QuoteKey) (*domain.Quote, error) {
	q := url.Values{}
	q.Set("fromCurrency", string(key.Source))
	q.Set("toCurrency", string(key.Target))
	q.Set("forexAmount", key.Amount.String())

	var wire quoteWire
	if err := c.do(ctx, http.MethodGet, "/orders/quote", q, nil, &wire); err != nil {
		return nil, err
	}
	return &domain.Quote{
		RateID:         domain.RateID(wire.ExchangeRateID),
		SourceCurrency: key.Source,
		TargetCurrency: key.Target,
		Amount:         key.Amount,
		ReceiveAmount:  wire.KrwAmount,
		AppliedRate:    wire.AppliedRate,
	}, nil
}

func (c *Client) ListOrders(ctx context.Context, page, limit int) (*domain.OrdersPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/orders", q, nil, &raw); err != nil {
		return nil, err
	}

	var wire ordersPageWire
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &wire.Orders); err != nil {
			return nil, decodeError(err)
		}
	default:
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, decodeError(err)
		}
	}

	result := &domain.OrdersPage{Orders: make([]domain.Order, 0, len(wire.Orders)), Page: page, Limit: limit}
	for _, w := range wire.Orders {
		o, err := w.toDomain()
		if err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Skipping order with unsupported currency", slog.Int64("order_id", w.OrderID))
			continue
		}
		result.Orders = append(result.Orders, o)
	}
	result.Total = len(result.Orders)
	if wire.Total != nil {
		result.Total = *wire.Total
	}
	return result, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) error {
	body := orderRequestWire{
		ExchangeRateID: int64(req.RateID),
		FromCurrency:   string(req.SourceCurrency),
		ToCurrency:     string(req.TargetCurrency),
		ForexAmount:    req.Amount.InexactFloat64(),
	}
	return c.do(ctx, http.MethodPost, "/orders", nil, body, nil)
}

func (c *Client) Login(ctx context.Context, email string) (*domain.Session, error) {
	q := url.Values{}
	q.Set("email", email)

	var wire loginWire
	if err := c.do(ctx, http.MethodPost, "/auth/login", q, nil, &wire); err != nil {
		return nil, err
	}
	if wire.MemberID == "" || wire.Token == "" {
		return nil, apperrors.NewAppError(apperrors.KindFailure, "login response is missing the member id or token", nil)
	}
	return &domain.Session{MemberID: string(wire.MemberID), Email: email, Token: wire.Token}, nil
}

// do performs one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s, ok := domain.SessionFromContext(ctx); ok && s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Exchange backend unreachable", slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return apperrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return apperrors.NewNetworkError(err)
	}
	logger.Debug("Exchange backend responded",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)))

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return decodeError(err)
			}
			env = envelope{Message: strings.TrimSpace(string(raw))}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classify(resp.StatusCode, env)
	}
	if out == nil || !env.hasData() {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return decodeError(err)
	}
	return nil
}

// classify maps an unsuccessful response onto the closed set of error kinds,
// keeping the upstream code and message.
func classify(status int, env envelope) *apperrors.APIError {
	kind := apperrors.KindFailure
	switch {
	case env.Code == CodeRateMismatch:
		kind = apperrors.KindRateMismatch
	case env.Code == CodeValidation, env.Code == CodeCurrencyMismatch:
		kind = apperrors.KindValidation
	case env.Code == CodeUnauthorized, status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = apperrors.KindUnauthorized
	}
	msg := env.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &apperrors.APIError{
		Kind:    kind,
		Code:    env.Code,
		Status:  status,
		Message: msg,
	}
}

func decodeError(err error) error {
	return apperrors.NewAppError(apperrors.KindFailure, "unexpected response from exchange backend", err)
}
