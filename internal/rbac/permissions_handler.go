package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PageRenderer renders a full dashboard page.
type PageRenderer interface {
	Page(w http.ResponseWriter, r *http.Request, name, title string, data any, status int)
}

// PermissionsHandler shows the role grant matrix.
type PermissionsHandler struct {
	policy   *Policy
	renderer PageRenderer
	rbac     Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(policy *Policy, renderer PageRenderer, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{policy: policy, renderer: renderer, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(PermRolesRead))
		r.Get("/", h.listPermissions)
	})
}

// MatrixRow is one catalog permission and whether each role holds it.
type MatrixRow struct {
	Permission Permission
	Granted    []bool
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	roles := h.policy.Roles()
	rows := make([]MatrixRow, 0, len(catalog))
	for _, perm := range catalog {
		row := MatrixRow{Permission: perm, Granted: make([]bool, len(roles))}
		for i, role := range roles {
			row.Granted[i] = h.policy.Allows(role, perm)
		}
		rows = append(rows, row)
	}
	h.renderer.Page(w, r, "pages/permissions.html", "Permissions", map[string]any{
		"Roles": roles,
		"Rows":  rows,
	}, http.StatusOK)
}
