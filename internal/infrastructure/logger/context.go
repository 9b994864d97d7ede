package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

// Context keys for values that every log line of a request should carry.
const (
	LoggerKey         contextKey = "logger"
	RequestIDKey      contextKey = "request_id"
	OrganizationIDKey contextKey = "organization_id"
	UserIDKey         contextKey = "user_id"
)

// correlation lists the keys copied onto log lines, in output order.
var correlation = []contextKey{RequestIDKey, OrganizationIDKey, UserIDKey}

func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// tag stores value under key and attaches it to the context logger as well.
func tag(ctx context.Context, key contextKey, value string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, key, value)
	l := FromContext(ctx).With(zap.String(string(key), value))
	return WithContext(ctx, l), l
}

func WithRequestID(ctx context.Context, requestID string) (context.Context, *zap.Logger) {
	return tag(ctx, RequestIDKey, requestID)
}

func WithOrganizationID(ctx context.Context, orgID string) (context.Context, *zap.Logger) {
	return tag(ctx, OrganizationIDKey, orgID)
}

func WithUserID(ctx context.Context, userID string) (context.Context, *zap.Logger) {
	return tag(ctx, UserIDKey, userID)
}

func value(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

func GetRequestID(ctx context.Context) string      { return value(ctx, RequestIDKey) }
func GetOrganizationID(ctx context.Context) string { return value(ctx, OrganizationIDKey) }
func GetUserID(ctx context.Context) string         { return value(ctx, UserIDKey) }

// contextFields returns a zap field for each correlation value set on ctx.
func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	for _, key := range correlation {
		if v := value(ctx, key); v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}
	return fields
}

// Enrich returns base tagged with the correlation values carried by ctx,
// for code that holds its own named logger rather than the request one.
//
//	logger.Enrich(ctx, s.logger).Info("expense approved", zap.String("expense_id", id))
func Enrich(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	if fields := contextFields(ctx); len(fields) > 0 {
		return base.With(fields...)
	}
	return base
}
