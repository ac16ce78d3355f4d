package domain

import "context"

// Session identifies the signed-in member and carries the upstream token.
type Session struct {
	MemberID string
	Email    string
	Token    string
}

type sessionCtxKey struct{}

// ContextWithSession stores s in ctx.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext returns the session stored by ContextWithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(Session)
	return s, ok
}
