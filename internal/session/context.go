package session

import "context"

type tokenContextKey struct{}

// WithToken stores the raw session token in context. The CSRF layer
// derives per-session tokens from it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext extracts the session token from context.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}
