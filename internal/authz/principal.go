// Package authz holds the pure authorization decision functions: role
// predicates over the resolved Principal and the assignment-based
// resource predicate shared by every job kind.
package authz

import "context"

// Principal is the resolved identity of the caller for the current
// request. It is built once from the session record and never mutated.
type Principal struct {
	ID    int64
	Name  string
	Email string
	Role  string
}

type principalContextKey struct{}

// WithPrincipal stores the principal in request-scoped context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, nil when the request
// never passed authentication.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
