package services

import (
	"context"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
)

// AuthSvcFacade defines the session lifecycle
type AuthSvcFacade interface {
	// Login authenticates with the exchange backend and returns a signed session token.
	Login(ctx context.Context, email string) (session *domain.Session, token string, expiresAt time.Time, err error)
	// ParseSession validates a session token.
	ParseSession(token string) (domain.Session, error)
	// Logout drops everything held for the member.
	Logout(ctx context.Context, memberID string)
}
