package services_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExchangeAPI ---
type MockExchangeAPI struct {
	mock.Mock
}

func (m *MockExchangeAPI) ListLatestRates(ctx context.Context) ([]domain.Rate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rate), args.Error(1)
}

func (m *MockExchangeAPI) GetWallets(ctx context.Context) (*domain.WalletSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletSummary), args.Error(1)
}

func (m *MockExchangeAPI) GetQuote(ctx context.Context, key domain.QuoteKey) (*domain.Quote, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockExchangeAPI) ListOrders(ctx context.Context, page, limit int) (*domain.OrdersPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrdersPage), args.Error(1)
}

func (m *MockExchangeAPI) PlaceOrder(ctx context.Context, req domain.OrderRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockExchangeAPI) Login(ctx context.Context, email string) (*domain.Session, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

var _ portsrepo.ExchangeAPIFacade = (*MockExchangeAPI)(nil)

// --- Mock SubmissionRepository ---
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) SaveSubmission(ctx context.Context, record domain.SubmissionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ListSubmissions(ctx context.Context, memberID string, limit int) ([]domain.SubmissionRecord, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubmissionRecord), args.Error(1)
}

var _ portsrepo.SubmissionRepositoryFacade = (*MockSubmissionRepository)(nil)

// --- Mock Analytics ---
type MockAnalytics struct {
	mock.Mock
}

func (m *MockAnalytics) Enqueue(distinctID string, event string, properties map[string]any) {
	m.Called(distinctID, event, properties)
}

var _ portssvc.AnalyticsSvc = (*MockAnalytics)(nil)

// --- helpers ---

const testMemberID = "member-1"

func memberCtx() context.Context {
	return domain.ContextWithSession(context.Background(), domain.Session{
		MemberID: testMemberID,
		Email:    "member@example.com",
		Token:    "upstream-token",
	})
}

func newTestCache(clock clockwork.Clock) *querycache.Cache {
	return querycache.New(querycache.Config{
		Clock:  clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRates(usdID, jpyID domain.RateID) []domain.Rate {
	return []domain.Rate{
		{ID: usdID, Currency: domain.USD, Price: dec("1320.50"), ChangePercentage: dec("0.25")},
		{ID: jpyID, Currency: domain.JPY, Price: dec("9.12"), ChangePercentage: dec("-1.10")},
	}
}
