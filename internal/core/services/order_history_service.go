package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/utils/pagination"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
)

const ordersKeyPrefix = "orders"

type orderHistoryService struct {
	BaseService
	reader portsrepo.OrderReader
	cache  *querycache.Cache
	opts   querycache.Options
}

// NewOrderHistoryService creates a new order history service. A zero StaleTime defaults to one minute.
func NewOrderHistoryService(reader portsrepo.OrderReader, cache *querycache.Cache, opts querycache.Options) portssvc.OrderHistorySvcFacade {
	if opts.StaleTime <= 0 {
		opts.StaleTime = time.Minute
	}
	return &orderHistoryService{reader: reader, cache: cache, opts: opts}
}

// OrdersKey is the cache key of one page of a member's history.
func OrdersKey(memberID string, p pagination.Params) querycache.Key {
	return querycache.Key{ordersKeyPrefix, memberID, strconv.Itoa(p.Page), strconv.Itoa(p.Limit)}
}

func (s *orderHistoryService) fetcher(p pagination.Params) func(context.Context) (domain.OrdersPage, error) {
	return func(ctx context.Context) (domain.OrdersPage, error) {
		page, err := s.reader.ListOrders(ctx, p.Page, p.Limit)
		if err != nil {
			return domain.OrdersPage{}, fmt.Errorf("failed to list orders: %w", err)
		}
		page.Page = p.Page
		page.Limit = p.Limit
		return *page, nil
	}
}

func (s *orderHistoryService) GetOrders(ctx context.Context, page, limit int) querycache.State[domain.OrdersPage] {
	memberID, err := s.MemberID(ctx)
	if err != nil {
		return querycache.State[domain.OrdersPage]{Status: querycache.StatusError, Err: err}
	}
	p, err := pagination.Normalize(page, limit)
	if err != nil {
		return querycache.State[domain.OrdersPage]{Status: querycache.StatusError, Err: err}
	}
	st := querycache.ReadState(ctx, s.cache, OrdersKey(memberID, p), s.opts, s.fetcher(p))
	if st.Err != nil {
		s.LogError(ctx, st.Err, "Failed to read order history")
	}
	return st
}

func (s *orderHistoryService) RefetchOrders(ctx context.Context, page, limit int) (domain.OrdersPage, error) {
	memberID, err := s.MemberID(ctx)
	if err != nil {
		return domain.OrdersPage{}, err
	}
	p, err := pagination.Normalize(page, limit)
	if err != nil {
		return domain.OrdersPage{}, err
	}
	return querycache.Read(ctx, s.cache, OrdersKey(memberID, p), s.opts, s.fetcher(p), true)
}

func (s *orderHistoryService) InvalidateOrders(ctx context.Context) {
	if memberID, err := s.MemberID(ctx); err == nil {
		s.cache.Invalidate(ordersKeyPrefix, memberID)
	}
}
