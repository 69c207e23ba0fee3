package rbac

import (
	"fmt"
	"slices"
)

// Permission names a single capability of the form "<entity>.<action>".
type Permission string

// Entity permissions.
const (
	PermUsersCreate Permission = "users.create"
	PermUsersRead   Permission = "users.read"
	PermUsersUpdate Permission = "users.update"
	PermUsersDelete Permission = "users.delete"

	PermRolesCreate Permission = "roles.create"
	PermRolesRead   Permission = "roles.read"
	PermRolesUpdate Permission = "roles.update"
	PermRolesDelete Permission = "roles.delete"

	PermAssetsCreate Permission = "assets.create"
	PermAssetsRead   Permission = "assets.read"
	PermAssetsUpdate Permission = "assets.update"
	PermAssetsDelete Permission = "assets.delete"

	PermContractsCreate Permission = "contracts.create"
	PermContractsRead   Permission = "contracts.read"
	PermContractsUpdate Permission = "contracts.update"
	PermContractsDelete Permission = "contracts.delete"

	PermEmailsCreate Permission = "emails.create"
	PermEmailsRead   Permission = "emails.read"
	PermEmailsUpdate Permission = "emails.update"
	PermEmailsDelete Permission = "emails.delete"

	PermPayrollCreate Permission = "payroll.create"
	PermPayrollRead   Permission = "payroll.read"
	PermPayrollUpdate Permission = "payroll.update"
	PermPayrollDelete Permission = "payroll.delete"

	PermTicketsCreate Permission = "tickets.create"
	PermTicketsRead   Permission = "tickets.read"
	PermTicketsUpdate Permission = "tickets.update"
	PermTicketsDelete Permission = "tickets.delete"

	PermChangeRequestsCreate Permission = "changeRequests.create"
	PermChangeRequestsRead   Permission = "changeRequests.read"
	PermChangeRequestsUpdate Permission = "changeRequests.update"
	PermChangeRequestsDelete Permission = "changeRequests.delete"

	PermAttendanceCreate Permission = "attendance.create"
	PermAttendanceRead   Permission = "attendance.read"
	PermAttendanceUpdate Permission = "attendance.update"
	PermAttendanceDelete Permission = "attendance.delete"

	PermKPICreate Permission = "kpi.create"
	PermKPIRead   Permission = "kpi.read"
	PermKPIUpdate Permission = "kpi.update"
	PermKPIDelete Permission = "kpi.delete"

	PermOKRCreate Permission = "okr.create"
	PermOKRRead   Permission = "okr.read"
	PermOKRUpdate Permission = "okr.update"
	PermOKRDelete Permission = "okr.delete"
)

// Platform permissions.
const (
	PermDashboardAccess Permission = "dashboard.access"
	PermReportsView     Permission = "reports.view"
	PermSettingsManage  Permission = "settings.manage"
)

// Action is the verb half of an entity permission.
type Action string

// Entity actions.
const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var catalog = []Permission{
	PermUsersCreate, PermUsersRead, PermUsersUpdate, PermUsersDelete,
	PermRolesCreate, PermRolesRead, PermRolesUpdate, PermRolesDelete,
	PermDashboardAccess,
	PermAssetsCreate, PermAssetsRead, PermAssetsUpdate, PermAssetsDelete,
	PermContractsCreate, PermContractsRead, PermContractsUpdate, PermContractsDelete,
	PermEmailsCreate, PermEmailsRead, PermEmailsUpdate, PermEmailsDelete,
	PermPayrollCreate, PermPayrollRead, PermPayrollUpdate, PermPayrollDelete,
	PermTicketsCreate, PermTicketsRead, PermTicketsUpdate, PermTicketsDelete,
	PermChangeRequestsCreate, PermChangeRequestsRead, PermChangeRequestsUpdate, PermChangeRequestsDelete,
	PermAttendanceCreate, PermAttendanceRead, PermAttendanceUpdate, PermAttendanceDelete,
	PermKPICreate, PermKPIRead, PermKPIUpdate, PermKPIDelete,
	PermOKRCreate, PermOKRRead, PermOKRUpdate, PermOKRDelete,
	PermReportsView,
	PermSettingsManage,
}

var catalogIndex = func() map[Permission]struct{} {
	idx := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		idx[p] = struct{}{}
	}
	return idx
}()

// Catalog returns every permission the system knows about, in display order.
func Catalog() []Permission {
	return slices.Clone(catalog)
}

// Valid reports whether p belongs to the catalog.
func (p Permission) Valid() bool {
	_, ok := catalogIndex[p]
	return ok
}

func (p Permission) String() string {
	return string(p)
}

// ParsePermission converts raw input into a catalog permission.
func ParsePermission(raw string) (Permission, error) {
	p := Permission(raw)
	if !p.Valid() {
		return "", fmt.Errorf("rbac: unknown permission %q", raw)
	}
	return p, nil
}

// For builds the entity permission for an action, e.g. For("tickets", ActionUpdate).
func For(entity string, action Action) Permission {
	return Permission(entity + "." + string(action))
}

// Principal describes the authenticated actor.
type Principal struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required"`
	Role      string `json:"role" validate:"required"`
	CreatedAt string `json:"createdAt"`
}
