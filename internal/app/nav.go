package app

import (
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/manager"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

// Sidebar paths outside the record modules.
const (
	DashboardPath   = "/dashboard"
	PermissionsPath = "/dashboard/permissions"
	SettingsPath    = "/dashboard/settings"
)

type navEntry struct {
	label string
	href  string
	perm  rbac.Permission
}

// navEntries lists every sidebar link in display order.
func navEntries(modules []manager.Module) []navEntry {
	entries := make([]navEntry, 0, len(modules)+3)
	entries = append(entries, navEntry{label: "Dashboard", href: DashboardPath, perm: rbac.PermDashboardAccess})
	for _, m := range modules {
		entries = append(entries, navEntry{label: m.Title(), href: m.Path(), perm: m.ReadPermission()})
	}
	return append(entries,
		navEntry{label: "Permissions", href: PermissionsPath, perm: rbac.PermRolesRead},
		navEntry{label: "Settings", href: SettingsPath, perm: rbac.PermSettingsManage},
	)
}

// Navigation returns the sidebar entries the session may open, marking the
// one that contains path.
func Navigation(sess *auth.Session, modules []manager.Module, path string) []view.NavItem {
	var items []view.NavItem
	for _, e := range navEntries(modules) {
		if !sess.HasPermission(e.perm) {
			continue
		}
		items = append(items, view.NavItem{Label: e.label, Href: e.href, Active: activeFor(e.href, path)})
	}
	return items
}

func activeFor(href, path string) bool {
	path = strings.TrimSuffix(path, "/")
	if href == DashboardPath {
		return path == DashboardPath
	}
	return path == href || strings.HasPrefix(path, href+"/")
}

// NewChrome fills the layout principal and sidebar for each page.
func NewChrome(modules []manager.Module) view.Chrome {
	return func(r *http.Request) (*rbac.Principal, []view.NavItem) {
		sess, ok := auth.SessionFrom(r.Context())
		if !ok {
			return nil, nil
		}
		p, ok := sess.Principal()
		if !ok {
			return nil, nil
		}
		return &p, Navigation(sess, modules, r.URL.Path)
	}
}
