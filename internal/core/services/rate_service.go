package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
)

// RatesKey is shared by every member; rates are not personalised.
var RatesKey = querycache.Key{"exchange-rates"}

const (
	defaultRatesStaleTime       = 55 * time.Second
	defaultRatesRefetchInterval = 60 * time.Second
)

type rateService struct {
	BaseService
	reader          portsrepo.RateReader
	cache           *querycache.Cache
	opts            querycache.Options
	refetchInterval time.Duration

	// One refetch loop serves every watcher; it runs while any is registered.
	watchMu     sync.Mutex
	watchers    map[uint64]context.Context
	nextWatcher uint64
	stopLoop    func()
}

// RateServiceOption configures the rate service.
type RateServiceOption func(*rateService)

// WithRatesPolicy overrides the freshness window and retry count.
func WithRatesPolicy(opts querycache.Options) RateServiceOption {
	return func(s *rateService) {
		s.opts = opts
	}
}

// WithRatesRefetchInterval sets the WatchRates period.
func WithRatesRefetchInterval(d time.Duration) RateServiceOption {
	return func(s *rateService) {
		if d > 0 {
			s.refetchInterval = d
		}
	}
}

// NewRateService creates a new rate service backed by the shared cache.
func NewRateService(reader portsrepo.RateReader, cache *querycache.Cache, options ...RateServiceOption) portssvc.RateSvcFacade {
	s := &rateService{
		reader:          reader,
		cache:           cache,
		opts:            querycache.Options{StaleTime: defaultRatesStaleTime},
		refetchInterval: defaultRatesRefetchInterval,
		watchers:        make(map[uint64]context.Context),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *rateService) fetch(ctx context.Context) ([]domain.Rate, error) {
	rates, err := s.reader.ListLatestRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest rates: %w", err)
	}
	return rates, nil
}

func (s *rateService) GetRates(ctx context.Context) querycache.State[[]domain.Rate] {
	st := querycache.ReadState(ctx, s.cache, RatesKey, s.opts, s.fetch)
	if st.Err != nil {
		s.LogError(ctx, st.Err, "Failed to read exchange rates")
	}
	return st
}

func (s *rateService) RefetchRates(ctx context.Context) ([]domain.Rate, error) {
	rates, err := querycache.Read(ctx, s.cache, RatesKey, s.opts, s.fetch, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to refetch exchange rates")
		return nil, err
	}
	s.LogDebug(ctx, "Exchange rates refetched", slog.Int("count", len(rates)))
	return rates, nil
}

func (s *rateService) InvalidateRates() {
	s.cache.Invalidate(RatesKey...)
}

func (s *rateService) SubscribeRates() (<-chan struct{}, func()) {
	return s.cache.Subscribe(RatesKey)
}

// WatchRates registers a watcher of the shared refetch loop, starting the loop
// for the first one. Each tick refetches once on behalf of all watchers, using
// the session of a live watcher.
func (s *rateService) WatchRates(ctx context.Context) (stop func()) {
	s.watchMu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ctx
	if s.stopLoop == nil {
		s.stopLoop = s.cache.Every(context.Background(), s.refetchInterval, s.scheduledRefetch)
	}
	s.watchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.watchMu.Lock()
			delete(s.watchers, id)
			var stopLoop func()
			if len(s.watchers) == 0 {
				stopLoop, s.stopLoop = s.stopLoop, nil
			}
			s.watchMu.Unlock()
			if stopLoop != nil {
				stopLoop()
			}
		})
	}
}

// liveWatcher returns the most recently registered watcher context that has not ended.
func (s *rateService) liveWatcher() (context.Context, bool) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	var (
		picked   context.Context
		pickedID uint64
	)
	for id, ctx := range s.watchers {
		if ctx.Err() != nil {
			continue
		}
		if picked == nil || id > pickedID {
			picked, pickedID = ctx, id
		}
	}
	return picked, picked != nil
}

func (s *rateService) scheduledRefetch(loopCtx context.Context) {
	watcherCtx, ok := s.liveWatcher()
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(watcherCtx)
	defer cancel()
	defer context.AfterFunc(loopCtx, cancel)()

	if _, err := s.RefetchRates(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.LogDebug(ctx, "Scheduled rate refetch failed", slog.String("error", err.Error()))
	}
}
