package middleware

import (
	"context"
	"net/http"

	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

type contextKey string

const ctxSessionID contextKey = "session_id"

// SessionIDFromContext returns the guest session resolved by Session, or "".
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithSessionID injects the session identifier into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSessionID, sessionID)
}

// RequireSessionID returns UNAUTHORIZED when the request did not pass Session.
func RequireSessionID(r *http.Request) (string, error) {
	if r == nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing")
	}
	sessionID := SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing")
	}
	return sessionID, nil
}
