package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
)

const walletsKeyPrefix = "wallets"

type walletService struct {
	BaseService
	reader portsrepo.WalletReader
	cache  *querycache.Cache
	opts   querycache.Options
}

// NewWalletService creates a new wallet service. A zero StaleTime defaults to five minutes.
func NewWalletService(reader portsrepo.WalletReader, cache *querycache.Cache, opts querycache.Options) portssvc.WalletSvcFacade {
	if opts.StaleTime <= 0 {
		opts.StaleTime = 5 * time.Minute
	}
	return &walletService{reader: reader, cache: cache, opts: opts}
}

// WalletsKey is the cache key of one member's wallets.
func WalletsKey(memberID string) querycache.Key {
	return querycache.Key{walletsKeyPrefix, memberID}
}

func (s *walletService) fetch(ctx context.Context) (domain.WalletSummary, error) {
	summary, err := s.reader.GetWallets(ctx)
	if err != nil {
		return domain.WalletSummary{}, fmt.Errorf("failed to get wallets: %w", err)
	}
	return *summary, nil
}

func (s *walletService) GetWallets(ctx context.Context) querycache.State[domain.WalletSummary] {
	memberID, err := s.MemberID(ctx)
	if err != nil {
		return querycache.State[domain.WalletSummary]{Status: querycache.StatusError, Err: err}
	}
	st := querycache.ReadState(ctx, s.cache, WalletsKey(memberID), s.opts, s.fetch)
	if st.Err != nil {
		s.LogError(ctx, st.Err, "Failed to read wallets")
	}
	return st
}

func (s *walletService) RefetchWallets(ctx context.Context) (domain.WalletSummary, error) {
	memberID, err := s.MemberID(ctx)
	if err != nil {
		return domain.WalletSummary{}, err
	}
	return querycache.Read(ctx, s.cache, WalletsKey(memberID), s.opts, s.fetch, true)
}

func (s *walletService) InvalidateWallets(ctx context.Context) {
	if memberID, err := s.MemberID(ctx); err == nil {
		s.cache.Invalidate(WalletsKey(memberID)...)
	}
}
