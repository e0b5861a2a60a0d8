// Package context carries request-scoped correlation values.
package context

import (
	"context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	actorTypeKey
	actorIDKey
	clientIPKey
	userAgentKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithActor records who is acting on behalf of the request.
func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	ctx = context.WithValue(ctx, actorTypeKey, strings.TrimSpace(actorType))
	return context.WithValue(ctx, actorIDKey, strings.TrimSpace(actorID))
}

func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	actorType, _ := ctx.Value(actorTypeKey).(string)
	actorID, _ := ctx.Value(actorIDKey).(string)
	return actorType, actorID
}

// WithClient records the caller's address and user agent.
func WithClient(ctx context.Context, ipAddress, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, strings.TrimSpace(ipAddress))
	return context.WithValue(ctx, userAgentKey, strings.TrimSpace(userAgent))
}

func ClientFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	ipAddress, _ := ctx.Value(clientIPKey).(string)
	userAgent, _ := ctx.Value(userAgentKey).(string)
	return ipAddress, userAgent
}
