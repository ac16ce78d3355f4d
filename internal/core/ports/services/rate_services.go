package services

import (
	"context"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
)

// RateReaderSvc defines cached reads of the latest rates
type RateReaderSvc interface {
	// GetRates returns the cached rates, fetching them when stale.
	GetRates(ctx context.Context) querycache.State[[]domain.Rate]
	// RefetchRates bypasses the cache and returns the freshly fetched rates.
	RefetchRates(ctx context.Context) ([]domain.Rate, error)
}

// RateSvcFacade combines all rate-related service interfaces
type RateSvcFacade interface {
	RateReaderSvc
	// InvalidateRates marks the cached rates stale.
	InvalidateRates()
	// SubscribeRates signals after every write or invalidation of the rates.
	SubscribeRates() (<-chan struct{}, func())
	// WatchRates keeps the rates refetched every refetch interval until stop is
	// called. Concurrent watchers share one refetch per interval.
	WatchRates(ctx context.Context) (stop func())
}

// WalletSvcFacade defines cached reads of the member's wallets
type WalletSvcFacade interface {
	GetWallets(ctx context.Context) querycache.State[domain.WalletSummary]
	RefetchWallets(ctx context.Context) (domain.WalletSummary, error)
	InvalidateWallets(ctx context.Context)
}

// OrderHistorySvcFacade defines cached reads of the member's order history
type OrderHistorySvcFacade interface {
	GetOrders(ctx context.Context, page, limit int) querycache.State[domain.OrdersPage]
	RefetchOrders(ctx context.Context, page, limit int) (domain.OrdersPage, error)
	// InvalidateOrders marks every cached page stale.
	InvalidateOrders(ctx context.Context)
}

// QuoteSvcFacade prices the current quote tuple
type QuoteSvcFacade interface {
	// GetQuote returns an idle state without reading when the amount is not positive.
	GetQuote(ctx context.Context, key domain.QuoteKey) querycache.State[domain.Quote]
}
