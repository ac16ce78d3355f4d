package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionMiddleware creates a Gin middleware handler that resolves the member session
// from the session cookie or, failing that, from an "Authorization: Bearer" header.
func SessionMiddleware(jwtSecret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		tokenString, source := sessionToken(c, cookieName)
		if tokenString == "" {
			logger.Warn("Session missing")
			abortUnauthorized(c, "Authentication required")
			return
		}

		session, err := utils.ParseSessionToken(tokenString, jwtSecret)
		if err != nil {
			logger.Warn("Invalid session", slog.String("source", source), slog.String("error", err.Error()))
			msg := "Invalid session"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Session has expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		enrichedLogger := logger.With(slog.String("member_id", session.MemberID))
		ctx := domain.ContextWithSession(c.Request.Context(), session)
		ctx = WithLogger(ctx, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(memberIDKey), session.MemberID)
		c.Set(string(loggerKey), enrichedLogger)

		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) (string, string) {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie, "cookie"
	}
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1], "header"
	}
	return "", ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    string(apperrors.KindUnauthorized),
		"message": msg,
	})
}
