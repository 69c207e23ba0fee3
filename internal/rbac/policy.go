package rbac

import (
	"slices"
	"sort"
)

// Role names with built-in grants.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// Policy maps role names to granted permissions. It is immutable once built.
type Policy struct {
	grants map[string]map[Permission]struct{}
	lists  map[string][]Permission
}

// NewPolicy builds a policy from role grants. Permissions outside the catalog are ignored.
func NewPolicy(grants map[string][]Permission) *Policy {
	p := &Policy{
		grants: make(map[string]map[Permission]struct{}, len(grants)),
		lists:  make(map[string][]Permission, len(grants)),
	}
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		list := make([]Permission, 0, len(perms))
		for _, perm := range perms {
			if !perm.Valid() {
				continue
			}
			if _, dup := set[perm]; dup {
				continue
			}
			set[perm] = struct{}{}
			list = append(list, perm)
		}
		p.grants[role] = set
		p.lists[role] = list
	}
	return p
}

// DefaultPolicy returns the built-in grants for admin, manager and user.
func DefaultPolicy() *Policy {
	return NewPolicy(map[string][]Permission{
		RoleAdmin: Catalog(),
		RoleManager: {
			PermUsersRead,
			PermUsersUpdate,
			PermRolesRead,
			PermDashboardAccess,
			PermReportsView,
		},
		RoleUser: {
			PermUsersRead,
			PermDashboardAccess,
		},
	})
}

// Allows reports whether role is granted perm. Unknown roles are granted nothing.
func (p *Policy) Allows(role string, perm Permission) bool {
	if p == nil {
		return false
	}
	_, ok := p.grants[role][perm]
	return ok
}

// Permissions lists the grants of role.
func (p *Policy) Permissions(role string) []Permission {
	if p == nil {
		return nil
	}
	return slices.Clone(p.lists[role])
}

// Roles lists role names known to the policy, sorted.
func (p *Policy) Roles() []string {
	if p == nil {
		return nil
	}
	roles := make([]string, 0, len(p.grants))
	for role := range p.grants {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// IsSystemRole reports whether role is one of the built-in roles.
func IsSystemRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}
