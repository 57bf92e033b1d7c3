package middleware

import (
	"context"
	"log/slog"
)

// contextKey is a private type so context values cannot collide with other
// packages.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	tenantIDKey  = contextKey("tenantID")
	userIDKey    = contextKey("userID")
)

// GetLoggerFromCtx retrieves the request-scoped logger from the context,
// falling back to the default logger.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// GetTenantID retrieves the resolved tenant ID from the context.
func GetTenantID(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantIDKey).(string)
	return tenantID, ok
}

// GetUserID retrieves the resolved caller identity from the context.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
