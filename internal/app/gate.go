package app

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/liftlog/liftlog/internal/authz"
	"github.com/liftlog/liftlog/internal/session"
)

// Paths reachable without a session. Matched by prefix; the gate
// short-circuits straight to the handler with no identity resolution.
var DefaultPublicPrefixes = []string{
	"/auth/login",
	"/auth/logout",
	"/auth/forgot-password",
	"/auth/reset-password/",
	"/static/",
	"/healthz",
}

// Paths that additionally require the admin role.
var DefaultAdminPrefixes = []string{
	"/users",
}

// LoginPath is where unauthenticated requests get redirected.
const LoginPath = "/auth/login"

// Outcome classifies the gate's decision for one request.
type Outcome int

const (
	OutcomeAuthorized Outcome = iota
	OutcomeUnauthenticated
	OutcomeForbidden
)

// Decision is the gate's verdict as a plain value, so callers branch on
// it instead of on a caught error type.
type Decision struct {
	Outcome   Outcome
	Principal *authz.Principal
	Token     string
}

// Gate applies authentication and the coarse role check to every
// request before a handler runs. It is constructed explicitly and
// injected; there is no ambient global session table.
type Gate struct {
	Logger         *slog.Logger
	Sessions       *session.Store
	PublicPrefixes []string
	AdminPrefixes  []string
}

// Evaluate runs the per-request state machine: cookie → session lookup
// (expired tokens get purged by Validate as a side effect) → principal
// built from the cached session fields, no database read → role check
// for admin-gated prefixes.
func (g *Gate) Evaluate(r *http.Request) Decision {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return Decision{Outcome: OutcomeUnauthenticated}
	}
	sess, ok := g.Sessions.Validate(cookie.Value)
	if !ok {
		// Unknown and expired tokens are indistinguishable on purpose.
		return Decision{Outcome: OutcomeUnauthenticated}
	}
	p := &authz.Principal{
		ID:    sess.UserID,
		Name:  sess.Name,
		Email: sess.Email,
		Role:  sess.Role,
	}
	if g.isAdminPath(r.URL.Path) && !authz.IsAdmin(p) {
		return Decision{Outcome: OutcomeForbidden, Principal: p, Token: cookie.Value}
	}
	return Decision{Outcome: OutcomeAuthorized, Principal: p, Token: cookie.Value}
}

// Middleware wires the gate into the HTTP stack. Unauthenticated
// requests are redirected to the login page; an authenticated non-admin
// hitting an admin prefix is sent back to the application root rather
// than shown a raw forbidden page.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		decision := g.Evaluate(r)
		switch decision.Outcome {
		case OutcomeUnauthenticated:
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		case OutcomeForbidden:
			if g.Logger != nil {
				g.Logger.Warn("admin gate refused",
					slog.String("path", r.URL.Path),
					slog.Int64("user_id", decision.Principal.ID))
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		ctx := authz.WithPrincipal(r.Context(), decision.Principal)
		ctx = session.WithToken(ctx, decision.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) isPublicPath(path string) bool {
	prefixes := g.PublicPrefixes
	if prefixes == nil {
		prefixes = DefaultPublicPrefixes
	}
	return hasAnyPrefix(path, prefixes)
}

func (g *Gate) isAdminPath(path string) bool {
	prefixes := g.AdminPrefixes
	if prefixes == nil {
		prefixes = DefaultAdminPrefixes
	}
	return hasAnyPrefix(path, prefixes)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
