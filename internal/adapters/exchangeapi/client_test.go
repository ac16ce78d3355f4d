package exchangeapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCtx() context.Context {
	return domain.ContextWithSession(context.Background(), domain.Session{MemberID: "7", Token: "upstream-token"})
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second)
}

func TestListLatestRates(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchange-rates/latest", r.URL.Path)
		assert.Equal(t, "Bearer upstream-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"code":"OK","message":"","data":[
			{"exchangeRateId":11,"currency":"USD","rate":1320.50,"changePercentage":0.25,"applyDateTime":"2025-01-15T10:00:00"},
			{"exchangeRateId":12,"currency":"JPY","rate":9.15,"changePercentage":-0.1,"applyDateTime":"2025-01-15T10:00:00"},
			{"exchangeRateId":13,"currency":"EUR","rate":1450,"changePercentage":0,"applyDateTime":"2025-01-15T10:00:00"}
		]}`)
	})

	rates, err := client.ListLatestRates(sessionCtx())
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, domain.RateID(11), rates[0].ID)
	assert.Equal(t, domain.USD, rates[0].Currency)
	assert.True(t, decimal.RequireFromString("1320.5").Equal(rates[0].Price))
	assert.Equal(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), rates[0].AsOf)
	assert.Equal(t, "down", rates[1].Direction())
}

func TestGetWallets(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":"OK","data":{"totalKrwBalance":1500000,"wallets":[
			{"walletId":1,"currency":"KRW","balance":1000000},
			{"walletId":2,"currency":"USD","balance":378.64}
		]}}`)
	})

	summary, err := client.GetWallets(sessionCtx())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1500000).Equal(summary.TotalHomeBalance))
	usd, ok := summary.Find(domain.USD)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("378.64").Equal(usd.Balance))
}

func TestGetQuote(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/quote", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("fromCurrency"))
		assert.Equal(t, "KRW", r.URL.Query().Get("toCurrency"))
		assert.Equal(t, "100", r.URL.Query().Get("forexAmount"))
		_, _ = io.WriteString(w, `{"code":"OK","data":{"krwAmount":132050,"appliedRate":1320.5}}`)
	})

	key := domain.QuoteKey{Source: domain.USD, Target: domain.KRW, Amount: decimal.NewFromInt(100)}
	q, err := client.GetQuote(sessionCtx(), key)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(132050).Equal(q.ReceiveAmount))
	assert.True(t, decimal.RequireFromString("1320.5").Equal(q.AppliedRate))
	assert.True(t, key.Equal(q.Key()))
}

func TestListOrders_AcceptsArrayAndObject(t *testing.T) {
	order := `{"orderId":5,"fromCurrency":"KRW","fromAmount":132050,"toCurrency":"USD","toAmount":100,"appliedRate":1320.5,"orderedAt":"2025-01-15 10:00:00"}`

	t.Run("array", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			_, _ = io.WriteString(w, `{"code":"OK","data":[`+order+`]}`)
		})
		page, err := client.ListOrders(sessionCtx(), 2, 10)
		require.NoError(t, err)
		require.Len(t, page.Orders, 1)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, domain.USD, page.Orders[0].TargetCurrency)
	})

	t.Run("object", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"code":"OK","data":{"orders":[`+order+`],"total":31}}`)
		})
		page, err := client.ListOrders(sessionCtx(), 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 31, page.Total)
		assert.Equal(t, 4, page.TotalPages())
	})
}

func TestPlaceOrder_SendsNumbers(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(11), body["exchangeRateId"])
		assert.Equal(t, "KRW", body["fromCurrency"])
		assert.Equal(t, "USD", body["toCurrency"])
		assert.Equal(t, 100.5, body["forexAmount"])
		_, _ = io.WriteString(w, `{"code":"OK","message":"success","data":null}`)
	})

	err := client.PlaceOrder(sessionCtx(), domain.OrderRequest{
		RateID:         11,
		SourceCurrency: domain.KRW,
		TargetCurrency: domain.USD,
		Amount:         decimal.RequireFromString("100.5"),
	})
	require.NoError(t, err)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		kind     apperrors.Kind
		message  string
	}{
		{"rate mismatch", http.StatusBadRequest, `{"code":"EXCHANGE_RATE_MISMATCH","message":"rate changed"}`, apperrors.ErrRateMismatch, apperrors.KindRateMismatch, "rate changed"},
		{"validation", http.StatusBadRequest, `{"code":"VALIDATION_ERROR","message":"bad amount"}`, apperrors.ErrValidation, apperrors.KindValidation, "bad amount"},
		{"currency mismatch", http.StatusBadRequest, `{"code":"CURRENCY_MISMATCH","message":"pair"}`, apperrors.ErrValidation, apperrors.KindValidation, "pair"},
		{"unauthorized status", http.StatusUnauthorized, `{"message":"expired"}`, apperrors.ErrUnauthorized, apperrors.KindUnauthorized, "expired"},
		{"forbidden status", http.StatusForbidden, ``, apperrors.ErrUnauthorized, apperrors.KindUnauthorized, "Forbidden"},
		{"insufficient balance", http.StatusBadRequest, `{"code":"WALLET_INSUFFICIENT_BALANCE","message":"not enough KRW"}`, apperrors.ErrFailure, apperrors.KindFailure, "not enough KRW"},
		{"plain text 500", http.StatusInternalServerError, `upstream exploded`, apperrors.ErrFailure, apperrors.KindFailure, "upstream exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			err := client.PlaceOrder(sessionCtx(), domain.OrderRequest{RateID: 1, SourceCurrency: domain.KRW, TargetCurrency: domain.USD, Amount: decimal.NewFromInt(1)})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
			assert.Equal(t, tt.message, apperrors.MessageOf(err, ""))
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := NewClient(srv.URL, time.Second)
	srv.Close()

	_, err := client.ListLatestRates(sessionCtx())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestLogin(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "kim@example.com", r.URL.Query().Get("email"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"code":"OK","data":{"memberId":42,"token":"abc"}}`)
	})

	s, err := client.Login(context.Background(), "kim@example.com")
	require.NoError(t, err)
	assert.Equal(t, "42", s.MemberID)
	assert.Equal(t, "abc", s.Token)
	assert.Equal(t, "kim@example.com", s.Email)
}
