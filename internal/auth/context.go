package auth

import (
	"context"
	"net/http"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

type sessionContextKey struct{}

// WithSession stores the auth session in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFrom returns the auth session stored in ctx, if any.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}

// FromContext returns the auth session and panics when none was installed.
// Handlers behind Middleware can always rely on it.
func FromContext(ctx context.Context) *Session {
	s, ok := SessionFrom(ctx)
	if !ok {
		panic("auth: no session in context; is auth middleware installed?")
	}
	return s
}

// HasPermission asks the session in ctx. It panics outside an established session.
func HasPermission(ctx context.Context, perm rbac.Permission) bool {
	return FromContext(ctx).HasPermission(perm)
}

// Subject adapts the request session for rbac.Middleware. Requests without a
// session are anonymous.
func Subject(r *http.Request) rbac.Subject {
	if s, ok := SessionFrom(r.Context()); ok {
		return s
	}
	return Anonymous()
}

// Middleware restores the auth session from the HTTP session loaded earlier in
// the chain and installs it into the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var slot Slot
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			slot = sess
		}
		s := a.Restore(slot)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}
