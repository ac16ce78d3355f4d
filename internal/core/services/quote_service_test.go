package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/core/services"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestQuoteService_IdleWithoutPositiveAmount(t *testing.T) {
	api := new(MockExchangeAPI)
	svc := services.NewQuoteService(api, newTestCache(clockwork.NewFakeClock()), querycache.Options{})

	for _, amount := range []string{"0", "-1"} {
		st := svc.GetQuote(memberCtx(), domain.QuoteKey{Source: domain.KRW, Target: domain.USD, Amount: dec(amount)})
		assert.Equal(t, querycache.StatusIdle, st.Status)
		assert.False(t, st.HasData)
	}
	api.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestQuoteService_RejectsInvalidPair(t *testing.T) {
	api := new(MockExchangeAPI)
	svc := services.NewQuoteService(api, newTestCache(clockwork.NewFakeClock()), querycache.Options{})

	st := svc.GetQuote(memberCtx(), domain.QuoteKey{Source: domain.USD, Target: domain.USD, Amount: dec("1")})

	assert.True(t, st.IsError())
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(st.Err))
	api.AssertNotCalled(t, "GetQuote", mock.Anything, mock.Anything)
}

func TestQuoteService_RequiresSession(t *testing.T) {
	api := new(MockExchangeAPI)
	svc := services.NewQuoteService(api, newTestCache(clockwork.NewFakeClock()), querycache.Options{})

	st := svc.GetQuote(context.Background(), domain.QuoteKey{Source: domain.KRW, Target: domain.USD, Amount: dec("1")})

	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(st.Err))
}

func TestQuoteService_DerivesReceiveAmount(t *testing.T) {
	api := new(MockExchangeAPI)
	key := domain.QuoteKey{Source: domain.USD, Target: domain.KRW, Amount: dec("100")}
	api.On("GetQuote", mock.Anything, mock.Anything).Return(&domain.Quote{RateID: 7, AppliedRate: dec("1320.50")}, nil).Once()
	svc := services.NewQuoteService(api, newTestCache(clockwork.NewFakeClock()), querycache.Options{})

	st := svc.GetQuote(memberCtx(), key)

	require.True(t, st.IsSuccess())
	assert.True(t, dec("132050").Equal(st.Data.ReceiveAmount), "got %s", st.Data.ReceiveAmount)
	assert.Equal(t, domain.RateID(7), st.Data.RateID)
	assert.True(t, st.Data.Key().Equal(key))
}

func TestQuoteService_OneReadPerKey(t *testing.T) {
	api := new(MockExchangeAPI)
	clock := clockwork.NewFakeClock()
	cache := newTestCache(clock)
	api.On("GetQuote", mock.Anything, mock.Anything).Return(&domain.Quote{ReceiveAmount: dec("912"), AppliedRate: dec("9.12")}, nil)
	svc := services.NewQuoteService(api, cache, querycache.Options{})
	key := domain.QuoteKey{Source: domain.JPY, Target: domain.KRW, Amount: dec("100")}

	svc.GetQuote(memberCtx(), key)
	st := svc.GetQuote(memberCtx(), key)
	require.True(t, st.IsSuccess())
	assert.False(t, st.IsStale)
	api.AssertNumberOfCalls(t, "GetQuote", 1)

	// a different amount is a different tuple
	svc.GetQuote(memberCtx(), domain.QuoteKey{Source: domain.JPY, Target: domain.KRW, Amount: dec("101")})
	api.AssertNumberOfCalls(t, "GetQuote", 2)

	assert.False(t, querycache.Peek[domain.Quote](cache, services.QuoteCacheKey(testMemberID, key)).IsStale)
}

func TestQuoteService_ErrorKeepsKind(t *testing.T) {
	api := new(MockExchangeAPI)
	api.On("GetQuote", mock.Anything, mock.Anything).Return(nil, apperrors.NewNetworkError(errors.New("timeout")))
	svc := services.NewQuoteService(api, newTestCache(clockwork.NewFakeClock()), querycache.Options{})

	st := svc.GetQuote(memberCtx(), domain.QuoteKey{Source: domain.KRW, Target: domain.USD, Amount: dec("5")})

	assert.True(t, st.IsError())
	assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(st.Err))
}
