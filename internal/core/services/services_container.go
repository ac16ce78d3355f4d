package services

import (
	"context"
	"log/slog"

	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/middleware"
	"github.com/SscSPs/exchange_desk/internal/platform/config"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
	"github.com/jonboulle/clockwork"
)

// ContainerDeps are the process-wide collaborators services share.
type ContainerDeps struct {
	Cache     *querycache.Cache
	Clock     clockwork.Clock
	Analytics portssvc.AnalyticsSvc
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps ContainerDeps) *portssvc.ServiceContainer {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Cache == nil {
		deps.Cache = querycache.New(querycache.Config{
			MaxEntries: cfg.CacheMaxEntries,
			GCTime:     cfg.CacheGCTime,
			Clock:      deps.Clock,
		})
	}
	container := &portssvc.ServiceContainer{}

	container.Rates = NewRateService(repos.ExchangeAPI, deps.Cache,
		WithRatesPolicy(querycache.Options{StaleTime: cfg.RatesStaleTime, Retries: cfg.QueryRetryCount}),
		WithRatesRefetchInterval(cfg.RatesRefetchInterval),
	)
	container.Wallets = NewWalletService(repos.ExchangeAPI, deps.Cache,
		querycache.Options{StaleTime: cfg.WalletsStaleTime, Retries: cfg.QueryRetryCount})
	container.Orders = NewOrderHistoryService(repos.ExchangeAPI, deps.Cache,
		querycache.Options{StaleTime: cfg.OrdersStaleTime, Retries: cfg.QueryRetryCount})
	container.Quotes = NewQuoteService(repos.ExchangeAPI, deps.Cache,
		querycache.Options{StaleTime: cfg.QuoteStaleTime, Retries: cfg.QueryRetryCount})

	// Mutations never retry.
	exchangeOpts := []ExchangeServiceOption{WithExchangeClock(deps.Clock)}
	if repos.SubmissionRepo != nil {
		exchangeOpts = append(exchangeOpts, WithSubmissionJournal(repos.SubmissionRepo))
	}
	if deps.Analytics != nil {
		exchangeOpts = append(exchangeOpts, WithAnalytics(deps.Analytics))
	}
	container.Exchange = NewExchangeService(container.Rates, container.Wallets, container.Orders, repos.ExchangeAPI, exchangeOpts...)

	desk := NewDeskRegistry(FormDeps{
		Rates:    container.Rates,
		Wallets:  container.Wallets,
		Quotes:   container.Quotes,
		Exchange: container.Exchange,
		Clock:    deps.Clock,
		Debounce: cfg.QuoteDebounce,
	}, WithDeskIdleTimeout(cfg.DeskIdleTimeout), WithDeskMaxForms(cfg.DeskMaxForms))
	container.Desk = desk

	cache := deps.Cache
	container.Auth = NewAuthService(repos.ExchangeAPI, cfg.SessionJWTSecret, cfg.SessionExpiry,
		WithAuthClock(deps.Clock),
		WithLogoutHook(func(ctx context.Context, memberID string) {
			desk.Release(memberID)
			n := cache.Clear(walletsKeyPrefix, memberID) +
				cache.Clear(ordersKeyPrefix, memberID) +
				cache.Clear(quoteKeyPrefix, memberID)
			middleware.GetLoggerFromCtx(ctx).Debug("Cleared member cache entries", slog.String("member_id", memberID), slog.Int("count", n))
		}),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.RateSvcFacade         = (*rateService)(nil)
	_ portssvc.WalletSvcFacade       = (*walletService)(nil)
	_ portssvc.OrderHistorySvcFacade = (*orderHistoryService)(nil)
	_ portssvc.QuoteSvcFacade        = (*quoteService)(nil)
	_ portssvc.ExchangeSvcFacade     = (*exchangeService)(nil)
	_ portssvc.AuthSvcFacade         = (*authService)(nil)
	_ portssvc.DeskSvcFacade         = (*deskRegistry)(nil)
)
