package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portsrepo "github.com/SscSPs/exchange_desk/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/utils"
	"github.com/jonboulle/clockwork"
)

// authService issues session tokens for members authenticated by the exchange backend.
type authService struct {
	BaseService
	gateway  portsrepo.AuthGateway
	secret   string
	expiry   time.Duration
	clock    clockwork.Clock
	onLogout []func(ctx context.Context, memberID string)
}

// AuthServiceOption configures the auth service.
type AuthServiceOption func(*authService)

// WithLogoutHook runs fn for every logout, e.g. to drop the member's cached data.
func WithLogoutHook(fn func(ctx context.Context, memberID string)) AuthServiceOption {
	return func(s *authService) {
		s.onLogout = append(s.onLogout, fn)
	}
}

// WithAuthClock sets the clock token lifetimes are measured on.
func WithAuthClock(clock clockwork.Clock) AuthServiceOption {
	return func(s *authService) {
		s.clock = clock
	}
}

// NewAuthService creates a new instance of authService.
func NewAuthService(gateway portsrepo.AuthGateway, secret string, expiry time.Duration, options ...AuthServiceOption) portssvc.AuthSvcFacade {
	s := &authService{
		gateway: gateway,
		secret:  secret,
		expiry:  expiry,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *authService) Login(ctx context.Context, email string) (*domain.Session, string, time.Time, error) {
	session, err := s.gateway.Login(ctx, email)
	if err != nil {
		s.LogError(ctx, err, "Upstream login failed")
		return nil, "", time.Time{}, fmt.Errorf("failed to log in: %w", err)
	}
	session.Email = email

	token, expiresAt, err := utils.GenerateSessionToken(*session, s.secret, s.expiry, s.clock.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to issue session token", slog.String("member_id", session.MemberID))
		return nil, "", time.Time{}, apperrors.NewAppError(apperrors.KindFailure, "failed to create session", err)
	}
	s.LogInfo(ctx, "Member logged in", slog.String("member_id", session.MemberID))
	return session, token, expiresAt, nil
}

func (s *authService) ParseSession(token string) (domain.Session, error) {
	session, err := utils.ParseSessionToken(token, s.secret)
	if err != nil {
		return domain.Session{}, apperrors.NewAppError(apperrors.KindUnauthorized, "invalid or expired session", err)
	}
	return session, nil
}

func (s *authService) Logout(ctx context.Context, memberID string) {
	for _, fn := range s.onLogout {
		fn(ctx, memberID)
	}
	s.LogInfo(ctx, "Member logged out", slog.String("member_id", memberID))
}
