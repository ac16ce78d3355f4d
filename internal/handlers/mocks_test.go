package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
	"github.com/stretchr/testify/mock"
)

// --- Mock RateService ---
type MockRateService struct {
	mock.Mock
	Changed chan struct{}
}

func (m *MockRateService) GetRates(ctx context.Context) querycache.State[[]domain.Rate] {
	args := m.Called(ctx)
	return args.Get(0).(querycache.State[[]domain.Rate])
}

func (m *MockRateService) RefetchRates(ctx context.Context) ([]domain.Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rate), args.Error(1)
}

func (m *MockRateService) InvalidateRates() {
	m.Called()
}

func (m *MockRateService) SubscribeRates() (<-chan struct{}, func()) {
	if m.Changed == nil {
		return make(chan struct{}), func() {}
	}
	return m.Changed, func() {}
}

func (m *MockRateService) WatchRates(ctx context.Context) func() {
	return func() {}
}

var _ portssvc.RateSvcFacade = (*MockRateService)(nil)

// --- Mock WalletService ---
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWallets(ctx context.Context) querycache.State[domain.WalletSummary] {
	args := m.Called(ctx)
	return args.Get(0).(querycache.State[domain.WalletSummary])
}

func (m *MockWalletService) RefetchWallets(ctx context.Context) (domain.WalletSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.WalletSummary), args.Error(1)
}

func (m *MockWalletService) InvalidateWallets(ctx context.Context) {
	m.Called(ctx)
}

var _ portssvc.WalletSvcFacade = (*MockWalletService)(nil)

// --- Mock OrderHistoryService ---
type MockOrderHistoryService struct {
	mock.Mock
}

func (m *MockOrderHistoryService) GetOrders(ctx context.Context, page, limit int) querycache.State[domain.OrdersPage] {
	args := m.Called(ctx, page, limit)
	return args.Get(0).(querycache.State[domain.OrdersPage])
}

func (m *MockOrderHistoryService) RefetchOrders(ctx context.Context, page, limit int) (domain.OrdersPage, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).(domain.OrdersPage), args.Error(1)
}

func (m *MockOrderHistoryService) InvalidateOrders(ctx context.Context) {
	m.Called(ctx)
}

var _ portssvc.OrderHistorySvcFacade = (*MockOrderHistoryService)(nil)

// --- Mock QuoteService ---
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) GetQuote(ctx context.Context, key domain.QuoteKey) querycache.State[domain.Quote] {
	args := m.Called(ctx, key)
	return args.Get(0).(querycache.State[domain.Quote])
}

var _ portssvc.QuoteSvcFacade = (*MockQuoteService)(nil)

// --- Mock ExchangeService ---
type MockExchangeService struct {
	mock.Mock
}

func (m *MockExchangeService) Submit(ctx context.Context, req domain.SubmitRequest, fb portssvc.Feedback) domain.SubmissionResult {
	args := m.Called(ctx, req, fb)
	return args.Get(0).(domain.SubmissionResult)
}

func (m *MockExchangeService) PlaceOrder(ctx context.Context, req domain.OrderRequest, fb portssvc.Feedback) domain.SubmissionResult {
	args := m.Called(ctx, req, fb)
	return args.Get(0).(domain.SubmissionResult)
}

func (m *MockExchangeService) ListSubmissions(ctx context.Context, limit int) ([]domain.SubmissionRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubmissionRecord), args.Error(1)
}

var _ portssvc.ExchangeSvcFacade = (*MockExchangeService)(nil)

// --- Mock AuthService ---
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email string) (*domain.Session, string, time.Time, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, "", time.Time{}, args.Error(3)
	}
	return args.Get(0).(*domain.Session), args.String(1), args.Get(2).(time.Time), args.Error(3)
}

func (m *MockAuthService) ParseSession(token string) (domain.Session, error) {
	args := m.Called(token)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, memberID string) {
	m.Called(ctx, memberID)
}

var _ portssvc.AuthSvcFacade = (*MockAuthService)(nil)

// --- Mock DeskService ---
type MockDeskService struct {
	mock.Mock
}

func (m *MockDeskService) snapshot(args mock.Arguments) (portssvc.DeskSnapshot, error) {
	return args.Get(0).(portssvc.DeskSnapshot), args.Error(1)
}

func (m *MockDeskService) Open(ctx context.Context) (portssvc.DeskSnapshot, error) {
	return m.snapshot(m.Called(ctx))
}

func (m *MockDeskService) Snapshot(ctx context.Context) (portssvc.DeskSnapshot, error) {
	return m.snapshot(m.Called(ctx))
}

func (m *MockDeskService) SetAmount(ctx context.Context, text string) (portssvc.DeskSnapshot, error) {
	return m.snapshot(m.Called(ctx, text))
}

func (m *MockDeskService) SetSelection(ctx context.Context, sel domain.Selection) (portssvc.DeskSnapshot, error) {
	return m.snapshot(m.Called(ctx, sel))
}

func (m *MockDeskService) Swap(ctx context.Context) (portssvc.DeskSnapshot, error) {
	return m.snapshot(m.Called(ctx))
}

func (m *MockDeskService) Reset(ctx context.Context) (portssvc.DeskSnapshot, error) {
	return m.snapshot(m.Called(ctx))
}

func (m *MockDeskService) Submit(ctx context.Context) (portssvc.DeskSnapshot, domain.SubmissionResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(portssvc.DeskSnapshot), args.Get(1).(domain.SubmissionResult), args.Error(2)
}

func (m *MockDeskService) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ portssvc.DeskSvcFacade = (*MockDeskService)(nil)
