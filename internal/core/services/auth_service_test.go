package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/core/services"
	"github.com/SscSPs/exchange_desk/internal/platform/config"
	"github.com/SscSPs/exchange_desk/internal/utils/querycache"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret"

type AuthServiceTestSuite struct {
	suite.Suite
	api       *MockExchangeAPI
	service   portssvc.AuthSvcFacade
	loggedOut []string
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.api = new(MockExchangeAPI)
	suite.loggedOut = nil
	suite.service = services.NewAuthService(suite.api, testSecret, time.Hour,
		services.WithAuthClock(clockwork.NewFakeClockAt(time.Now())),
		services.WithLogoutHook(func(_ context.Context, memberID string) {
			suite.loggedOut = append(suite.loggedOut, memberID)
		}),
	)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestLogin_IssuesParsableToken() {
	suite.api.On("Login", mock.Anything, "member@example.com").
		Return(&domain.Session{MemberID: testMemberID, Token: "upstream-token"}, nil).Once()

	session, token, expiresAt, err := suite.service.Login(context.Background(), "member@example.com")

	suite.Require().NoError(err)
	suite.Equal("member@example.com", session.Email)
	suite.NotEmpty(token)
	suite.WithinDuration(time.Now().Add(time.Hour), expiresAt, time.Minute)

	parsed, err := suite.service.ParseSession(token)
	suite.Require().NoError(err)
	suite.Equal(domain.Session{MemberID: testMemberID, Email: "member@example.com", Token: "upstream-token"}, parsed)
}

func (suite *AuthServiceTestSuite) TestLogin_UpstreamFailureKeepsKind() {
	suite.api.On("Login", mock.Anything, "nobody@example.com").
		Return(nil, &apperrors.APIError{Kind: apperrors.KindUnauthorized, Code: "MEMBER_NOT_FOUND", Status: 401, Message: "Unknown member"}).Once()

	_, token, _, err := suite.service.Login(context.Background(), "nobody@example.com")

	suite.Require().Error(err)
	suite.Empty(token)
	suite.Equal(apperrors.KindUnauthorized, apperrors.KindOf(err))
	suite.Equal("Unknown member", apperrors.MessageOf(err, ""))
}

func (suite *AuthServiceTestSuite) TestLogin_RejectsSessionWithoutToken() {
	suite.api.On("Login", mock.Anything, "member@example.com").
		Return(&domain.Session{MemberID: testMemberID}, nil).Once()

	_, _, _, err := suite.service.Login(context.Background(), "member@example.com")

	suite.Equal(apperrors.KindFailure, apperrors.KindOf(err))
}

func (suite *AuthServiceTestSuite) TestParseSession_Rejections() {
	other := services.NewAuthService(suite.api, "other-secret", time.Hour)
	suite.api.On("Login", mock.Anything, mock.Anything).
		Return(&domain.Session{MemberID: testMemberID, Token: "upstream-token"}, nil)
	_, foreign, _, err := other.Login(context.Background(), "member@example.com")
	suite.Require().NoError(err)

	for _, token := range []string{"", "garbage", foreign} {
		_, err := suite.service.ParseSession(token)
		suite.Equal(apperrors.KindUnauthorized, apperrors.KindOf(err), "token %q", token)
	}
}

func (suite *AuthServiceTestSuite) TestLogout_RunsHooks() {
	suite.service.Logout(context.Background(), testMemberID)

	suite.Equal([]string{testMemberID}, suite.loggedOut)
}

func TestServiceContainer_LogoutClearsMemberData(t *testing.T) {
	api := new(MockExchangeAPI)
	clock := clockwork.NewFakeClockAt(time.Now())
	cache := newTestCache(clock)
	cfg := &config.Config{SessionJWTSecret: testSecret, SessionExpiry: time.Hour}
	container := services.NewServiceContainer(cfg, portsrepo.RepositoryProvider{ExchangeAPI: api}, services.ContainerDeps{
		Cache: cache,
		Clock: clock,
	})
	api.On("ListLatestRates", mock.Anything).Return(testRates(7, 8), nil)
	api.On("GetWallets", mock.Anything).Return(&domain.WalletSummary{}, nil)

	_, err := container.Desk.Open(memberCtx())
	if err != nil {
		t.Fatal(err)
	}
	container.Auth.Logout(memberCtx(), testMemberID)

	if st := querycache.Peek[domain.WalletSummary](cache, services.WalletsKey(testMemberID)); st.Status != querycache.StatusIdle {
		t.Errorf("wallets still cached after logout: %s", st.Status)
	}
	if st := querycache.Peek[[]domain.Rate](cache, services.RatesKey); !st.HasData {
		t.Error("shared rates should survive a member logout")
	}
	if _, err := container.Desk.Snapshot(memberCtx()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("desk should be released on logout, got %v", err)
	}
}
