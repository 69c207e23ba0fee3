package rbac

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-admin/internal/observability"
)

// Subject answers permission questions for the actor behind a request.
type Subject interface {
	IsAuthenticated() bool
	HasPermission(Permission) bool
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	// Subject resolves the actor for a request. A nil result is treated as anonymous.
	Subject func(*http.Request) Subject
	Logger  *slog.Logger
	Metrics *observability.Metrics
	// LoginPath receives anonymous visitors. Defaults to /login.
	LoginPath string
	// Forbidden renders the unauthorized page. Defaults to a bare 403.
	Forbidden http.Handler
}

// Require ensures the current actor holds perm.
func (m Middleware) Require(perm Permission) func(http.Handler) http.Handler {
	return m.RequireAll(perm)
}

// RequireAny ensures the current actor has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			subject, ok := m.authenticated(w, r)
			if !ok {
				return
			}
			if hasAnyPermission(subject, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			m.deny(w, r, normalized[0])
		})
	}
}

// RequireAll ensures the current actor has all required permissions.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(normalized) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			subject, ok := m.authenticated(w, r)
			if !ok {
				return
			}
			if missing, ok := firstMissing(subject, normalized); !ok {
				m.deny(w, r, missing)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated only checks that somebody is logged in.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.authenticated(w, r); ok {
			next.ServeHTTP(w, r)
		}
	})
}

func (m Middleware) authenticated(w http.ResponseWriter, r *http.Request) (Subject, bool) {
	var subject Subject
	if m.Subject != nil {
		subject = m.Subject(r)
	}
	if subject == nil || !subject.IsAuthenticated() {
		loginPath := m.LoginPath
		if loginPath == "" {
			loginPath = "/login"
		}
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return nil, false
	}
	return subject, true
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, perm Permission) {
	m.Metrics.PermissionDenied(perm.String())
	if m.Logger != nil {
		m.Logger.Info("rbac denied", slog.String("permission", perm.String()), slog.String("path", r.URL.Path))
	}
	if m.Forbidden != nil {
		m.Forbidden.ServeHTTP(w, r)
		return
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

func normalizePermissions(perms []Permission) []Permission {
	seen := make(map[Permission]struct{}, len(perms))
	normalized := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAnyPermission(subject Subject, required []Permission) bool {
	for _, p := range required {
		if subject.HasPermission(p) {
			return true
		}
	}
	return false
}

func firstMissing(subject Subject, required []Permission) (Permission, bool) {
	for _, p := range required {
		if !subject.HasPermission(p) {
			return p, false
		}
	}
	return "", true
}
