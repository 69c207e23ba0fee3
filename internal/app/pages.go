package app

import (
	"net/http"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
)

// LandingPage feeds pages/landing.html.
type LandingPage struct {
	Authenticated bool
	Name          string
}

func landing(renderer rbac.PageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var page LandingPage
		if sess, ok := auth.SessionFrom(r.Context()); ok {
			if p, ok := sess.Principal(); ok {
				page = LandingPage{Authenticated: true, Name: p.Name}
			}
		}
		renderer.Page(w, r, "pages/landing.html", "Welcome", page, http.StatusOK)
	}
}

// NotFound renders the 404 page.
func NotFound(renderer rbac.PageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer.Page(w, r, "pages/notfound.html", "Page not found", nil, http.StatusNotFound)
	}
}

// Forbidden renders the unauthorized page for signed-in users lacking a grant.
func Forbidden(renderer rbac.PageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer.Page(w, r, "pages/unauthorized.html", "Access denied", nil, http.StatusForbidden)
	}
}
