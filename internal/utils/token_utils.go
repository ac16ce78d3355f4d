package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

// SessionIssuer is the issuer claim of session tokens.
const SessionIssuer = "exchange_desk"

// SessionClaims is the payload of the session cookie. The subject is the member id.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	UpstreamToken string `json:"upt"`
}

// GenerateSessionToken signs a session for the given lifetime, starting at now.
func GenerateSessionToken(session domain.Session, secret string, expiry time.Duration, now time.Time) (string, time.Time, error) {
	if session.MemberID == "" || session.Token == "" {
		return "", time.Time{}, errors.New("session requires member id and upstream token")
	}
	expiresAt := now.Add(expiry)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    SessionIssuer,
			Subject:   session.MemberID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		Email:         session.Email,
		UpstreamToken: session.Token,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseSessionToken validates the signature and standard claims of a session token.
func ParseSessionToken(tokenString, secret string) (domain.Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(SessionIssuer))
	if err != nil {
		return domain.Session{}, err
	}
	if !token.Valid {
		return domain.Session{}, jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" || claims.UpstreamToken == "" {
		return domain.Session{}, jwt.ErrTokenInvalidClaims
	}
	return domain.Session{
		MemberID: claims.Subject,
		Email:    claims.Email,
		Token:    claims.UpstreamToken,
	}, nil
}

// GenerateSecureRandomString returns lengthInBytes random bytes, hex encoded.
func GenerateSecureRandomString(lengthInBytes int) (string, error) {
	if lengthInBytes <= 0 {
		return "", fmt.Errorf("lengthInBytes must be positive")
	}
	b := make([]byte, lengthInBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
