package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ctxKey struct{}

// echoKey is where the request-scoped logger lives in an echo.Context
const echoKey = "logger"

// FromContext returns the logger carried by ctx, or the global one
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromEcho returns the request-scoped logger, or the global one
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(echoKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// SetEcho replaces the request-scoped logger
func SetEcho(c echo.Context, l *zap.Logger) {
	c.Set(echoKey, l)
}

// With adds fields to the request-scoped logger for the rest of the request
func With(c echo.Context, fields ...zap.Field) *zap.Logger {
	l := FromEcho(c).With(fields...)
	SetEcho(c, l)
	return l
}

// RequestContext is the request's context carrying its logger, for services
func RequestContext(c echo.Context) context.Context {
	return WithContext(c.Request().Context(), FromEcho(c))
}
