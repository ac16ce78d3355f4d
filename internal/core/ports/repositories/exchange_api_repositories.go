package repositories

import (
	"context"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
)

// The exchange backend authenticates every call with the session stored in ctx
// (see domain.ContextWithSession).

// RateReader defines read operations for the latest exchange rates
type RateReader interface {
	// ListLatestRates retrieves one rate per foreign currency.
	ListLatestRates(ctx context.Context) ([]domain.Rate, error)
}

// WalletReader defines read operations for the member's wallets
type WalletReader interface {
	GetWallets(ctx context.Context) (*domain.WalletSummary, error)
}

// QuoteReader prices a prospective exchange
type QuoteReader interface {
	GetQuote(ctx context.Context, key domain.QuoteKey) (*domain.Quote, error)
}

// OrderReader defines read operations for order history
type OrderReader interface {
	// ListOrders retrieves one page of executed orders, newest first.
	ListOrders(ctx context.Context, page, limit int) (*domain.OrdersPage, error)
}

// OrderWriter defines write operations for orders
type OrderWriter interface {
	// PlaceOrder executes an exchange. The backend rejects stale rate ids.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) error
}

// AuthGateway exchanges credentials for an upstream session
type AuthGateway interface {
	Login(ctx context.Context, email string) (*domain.Session, error)
}

// ExchangeAPIFacade combines every exchange backend interface
type ExchangeAPIFacade interface {
	RateReader
	WalletReader
	QuoteReader
	OrderReader
	OrderWriter
	AuthGateway
}
