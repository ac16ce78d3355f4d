package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/utils/money"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
)

const quoteKeyPrefix = "quote"

type quoteService struct {
	BaseService
	reader portsrepo.QuoteReader
	cache  *querycache.Cache
	opts   querycache.Options
}

// NewQuoteService creates a new quote service. A zero StaleTime defaults to thirty seconds,
// shorter than the rate window so quotes never outlive the rate they were priced on.
func NewQuoteService(reader portsrepo.QuoteReader, cache *querycache.Cache, opts querycache.Options) portssvc.QuoteSvcFacade {
	if opts.StaleTime <= 0 {
		opts.StaleTime = 30 * time.Second
	}
	return &quoteService{reader: reader, cache: cache, opts: opts}
}

// QuoteCacheKey is the cache key of one quote tuple for a member.
func QuoteCacheKey(memberID string, key domain.QuoteKey) querycache.Key {
	return append(querycache.Key{quoteKeyPrefix, memberID}, key.Segments()...)
}

func (s *quoteService) GetQuote(ctx context.Context, key domain.QuoteKey) querycache.State[domain.Quote] {
	if !key.Amount.IsPositive() {
		return querycache.State[domain.Quote]{Status: querycache.StatusIdle}
	}
	if err := domain.ValidatePair(key.Source, key.Target); err != nil {
		return querycache.State[domain.Quote]{Status: querycache.StatusError, Err: err}
	}
	memberID, err := s.MemberID(ctx)
	if err != nil {
		return querycache.State[domain.Quote]{Status: querycache.StatusError, Err: err}
	}

	st := querycache.ReadState(ctx, s.cache, QuoteCacheKey(memberID, key), s.opts, func(ctx context.Context) (domain.Quote, error) {
		q, err := s.reader.GetQuote(ctx, key)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("failed to get quote for %s: %w", domain.PairKey(key.Source, key.Target), err)
		}
		return normalizeQuote(key, *q), nil
	})
	if st.Err != nil {
		s.LogError(ctx, st.Err, "Failed to read quote",
			slog.String("pair", domain.PairKey(key.Source, key.Target)),
			slog.String("amount", key.Amount.String()))
	}
	return st
}

// normalizeQuote pins the quote to the tuple it was requested for and derives
// the receive amount when the backend leaves it out.
func normalizeQuote(key domain.QuoteKey, q domain.Quote) domain.Quote {
	q.SourceCurrency = key.Source
	q.TargetCurrency = key.Target
	q.Amount = key.Amount
	if q.ReceiveAmount.IsZero() && !q.AppliedRate.IsZero() {
		q.ReceiveAmount = money.ReceiveAmount(key.Amount, q.AppliedRate)
	} else {
		q.ReceiveAmount = money.Round(q.ReceiveAmount)
	}
	return q
}
