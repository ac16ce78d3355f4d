package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// MemberID returns the signed-in member, or an unauthorized error.
func (s *BaseService) MemberID(ctx context.Context) (string, error) {
	session, ok := domain.SessionFromContext(ctx)
	if !ok || session.MemberID == "" {
		return "", apperrors.NewAppError(apperrors.KindUnauthorized, "login required", nil)
	}
	return session.MemberID, nil
}
