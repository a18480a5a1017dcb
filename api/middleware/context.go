package middleware

import "context"

type ctxKey int

const ctxAccessID ctxKey = iota

// WithAccessID stores the authenticated session id in the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// AccessIDFromContext returns the session id set by AdminAuth, or "".
func AccessIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(ctxAccessID).(string); ok {
		return value
	}
	return ""
}
