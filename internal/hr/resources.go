package hr

import (
	"context"
	"fmt"
	"html/template"

	"github.com/odyssey-erp/odyssey-admin/internal/manager"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/table"
)

// Modules wires every collection into a record screen, in sidebar order.
func (c *Collections) Modules(deps manager.Deps) []manager.Module {
	return []manager.Module{
		manager.NewHandler(c.UserResource(), deps),
		manager.NewHandler(c.RoleResource(), deps),
		manager.NewHandler(c.ContractResource(), deps),
		manager.NewHandler(c.EmailAccountResource(), deps),
		manager.NewHandler(c.PayrollResource(), deps),
		manager.NewHandler(c.TicketResource(), deps),
		manager.NewHandler(c.ChangeRequestResource(), deps),
		manager.NewHandler(c.AttendanceResource(), deps),
		manager.NewHandler(c.KPIResource(), deps),
		manager.NewHandler(c.OKRResource(), deps),
		manager.NewHandler(c.AssetResource(), deps),
	}
}

func options(values ...string) []manager.Option {
	out := make([]manager.Option, len(values))
	for i, v := range values {
		out[i] = manager.Option{Value: v, Label: manager.Humanize(v)}
	}
	return out
}

func sortable[T table.Row](key, header string) table.Column[T] {
	return table.Column[T]{Key: key, Header: header, Sortable: true}
}

func created[T table.Row]() table.Column[T] {
	return sortable[T]("createdAt", "Created")
}

// roleOptions lists stored roles so custom roles can be assigned.
func (c *Collections) roleOptions(ctx context.Context) []manager.Option {
	roles := c.Roles.List(ctx)
	out := make([]manager.Option, len(roles))
	for i, r := range roles {
		out[i] = manager.Option{Value: r.ID, Label: r.Name}
	}
	return out
}

func permissionOptions() []manager.Option {
	perms := rbac.Catalog()
	out := make([]manager.Option, len(perms))
	for i, p := range perms {
		out[i] = manager.Option{Value: p.String(), Label: p.String()}
	}
	return out
}

func (c *Collections) UserResource() manager.Resource[User] {
	return manager.Resource[User]{
		Slug: "users", Entity: "users", Title: "Users", Singular: "User",
		Description:       "Manage user accounts and their roles.",
		SearchKey:         "name",
		SearchPlaceholder: "Search users...",
		Columns: []table.Column[User]{
			sortable[User]("name", "Name"),
			sortable[User]("email", "Email"),
			{Key: "role", Header: "Role", Sortable: true, Render: manager.Badge[User]("role")},
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[User]("status")},
			sortable[User]("division", "Division"),
			sortable[User]("organization", "Organization"),
			sortable[User]("position", "Position"),
			sortable[User]("department", "Department"),
			created[User](),
		},
		Fields: []manager.Field{
			{Name: "name", Label: "Name", Type: manager.FieldText, Required: true, Placeholder: "Enter full name"},
			{Name: "email", Label: "Email", Type: manager.FieldEmail, Required: true, Placeholder: "Enter email address"},
			{Name: "role", Label: "Role", Type: manager.FieldSelect, Required: true, OptionsFrom: c.roleOptions, Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: options(StatusActive, StatusInactive), Half: true},
			{Name: "division", Label: "Division", Type: manager.FieldText, Half: true},
			{Name: "organization", Label: "Organization", Type: manager.FieldText, Half: true},
			{Name: "position", Label: "Position", Type: manager.FieldText, Half: true},
			{Name: "department", Label: "Department", Type: manager.FieldText, Half: true},
		},
		Store: c.Users,
	}
}

func (c *Collections) RoleResource() manager.Resource[Role] {
	return manager.Resource[Role]{
		Slug: "roles", Entity: "roles", Title: "Roles", Singular: "Role",
		Description:       "Define roles and the permissions they carry.",
		SearchKey:         "name",
		SearchPlaceholder: "Search roles...",
		Columns: []table.Column[Role]{
			sortable[Role]("name", "Name"),
			sortable[Role]("description", "Description"),
			{Key: "permissions", Header: "Permissions", Render: permissionSummary},
			created[Role](),
		},
		Fields: []manager.Field{
			{Name: "name", Label: "Role Name", Type: manager.FieldText, Required: true, Placeholder: "e.g. Content Editor"},
			{Name: "description", Label: "Description", Type: manager.FieldTextarea, Placeholder: "Describe the role"},
			{Name: "permissions", Label: "Permissions", Type: manager.FieldChecklist, Options: permissionOptions()},
		},
		Store:     c.Roles,
		Deletable: func(r Role) bool { return !rbac.IsSystemRole(r.ID) },
	}
}

var permissionSummary = table.RenderFunc[Role](func(r Role) template.HTML {
	tags := manager.Tags[Role]("permissions", 4).Render(r)
	return template.HTML(fmt.Sprintf(`<span class="muted">%d permissions</span> `, len(r.Permissions))) + tags
})

func (c *Collections) ContractResource() manager.Resource[Contract] {
	return manager.Resource[Contract]{
		Slug: "contracts", Entity: "contracts", Title: "Contracts", Singular: "Contract",
		Description:       "Track employment, freelance and vendor agreements.",
		SearchKey:         "title",
		SearchPlaceholder: "Search contracts...",
		Columns: []table.Column[Contract]{
			sortable[Contract]("title", "Title"),
			sortable[Contract]("party", "Party"),
			{Key: "dates", Header: "Dates"},
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[Contract]("status")},
			{Key: "type", Header: "Type", Sortable: true, Render: manager.Badge[Contract]("type")},
			created[Contract](),
		},
		Fields: []manager.Field{
			{Name: "title", Label: "Title", Type: manager.FieldText, Required: true, Placeholder: "Contract title"},
			{Name: "party", Label: "Party", Type: manager.FieldText, Required: true, Placeholder: "Counterparty name"},
			{Name: "startDate", Label: "Start Date", Type: manager.FieldDate, Required: true, Half: true},
			{Name: "endDate", Label: "End Date", Type: manager.FieldDate, Required: true, Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: options("active", "expired", "draft"), Half: true},
			{Name: "type", Label: "Type", Type: manager.FieldSelect, Required: true, Options: options("employee", "freelance", "internship", "vendor"), Half: true},
			{Name: "notes", Label: "Notes", Type: manager.FieldTextarea},
		},
		Store: c.Contracts,
	}
}

func (c *Collections) EmailAccountResource() manager.Resource[EmailAccount] {
	return manager.Resource[EmailAccount]{
		Slug: "emails", Entity: "emails", Title: "Email Accounts", Singular: "Email Account",
		Description:       "Manage company mailboxes.",
		SearchKey:         "address",
		SearchPlaceholder: "Search email accounts...",
		Columns: []table.Column[EmailAccount]{
			sortable[EmailAccount]("address", "Address"),
			sortable[EmailAccount]("provider", "Provider"),
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[EmailAccount]("status")},
			created[EmailAccount](),
		},
		Fields: []manager.Field{
			{Name: "address", Label: "Email Address", Type: manager.FieldEmail, Required: true, Placeholder: "name@company.com"},
			{Name: "provider", Label: "Provider", Type: manager.FieldText, Required: true, Placeholder: "e.g. Google Workspace", Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: options(StatusActive, StatusInactive), Half: true},
			{Name: "description", Label: "Description", Type: manager.FieldTextarea},
		},
		Store: c.EmailAccounts,
	}
}

func (c *Collections) PayrollResource() manager.Resource[Payroll] {
	return manager.Resource[Payroll]{
		Slug: "payroll", Entity: "payroll", Title: "Payroll", Singular: "Payroll",
		Description:       "Record pay runs. Net pay is gross pay minus deductions.",
		SearchKey:         "employeeName",
		SearchPlaceholder: "Search payroll records...",
		Columns: []table.Column[Payroll]{
			sortable[Payroll]("employeeName", "Employee"),
			{Key: "netPay", Header: "Net Pay", Sortable: true, Render: manager.Money[Payroll]("netPay")},
			sortable[Payroll]("period", "Period"),
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[Payroll]("status")},
			created[Payroll](),
		},
		Fields: []manager.Field{
			{Name: "employeeName", Label: "Employee Name", Type: manager.FieldText, Required: true, Half: true},
			{Name: "employeeEmail", Label: "Employee Email", Type: manager.FieldEmail, Required: true, Half: true},
			{Name: "period", Label: "Period (YYYY-MM)", Type: manager.FieldMonth, Required: true, Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: options("pending", "paid", "failed"), Half: true},
			{Name: "grossPay", Label: "Gross Pay", Type: manager.FieldNumber, Required: true, Step: "0.01", Half: true},
			{Name: "deductions", Label: "Deductions", Type: manager.FieldNumber, Step: "0.01", Half: true},
			{Name: "notes", Label: "Notes", Type: manager.FieldTextarea},
		},
		Store: c.Payrolls,
		Links: func(p Payroll) []manager.Link {
			return []manager.Link{{Label: "Payslip", Href: PayslipPath(p.ID)}}
		},
	}
}

// PayslipPath is the PDF download URL of a payroll record.
func PayslipPath(id string) string {
	return "/dashboard/payroll/" + id + "/payslip.pdf"
}

func (c *Collections) TicketResource() manager.Resource[Ticket] {
	return manager.Resource[Ticket]{
		Slug: "tickets", Entity: "tickets", Title: "Tickets", Singular: "Ticket",
		Description:       "Support requests raised by staff.",
		SearchKey:         "title",
		SearchPlaceholder: "Search tickets...",
		Columns: []table.Column[Ticket]{
			sortable[Ticket]("title", "Title"),
			{Key: "priority", Header: "Priority", Sortable: true, Render: manager.Badge[Ticket]("priority")},
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[Ticket]("status")},
			sortable[Ticket]("requester", "Requester"),
			created[Ticket](),
		},
		Fields: []manager.Field{
			{Name: "title", Label: "Title", Type: manager.FieldText, Required: true},
			{Name: "requester", Label: "Requester", Type: manager.FieldText, Required: true},
			{Name: "priority", Label: "Priority", Type: manager.FieldSelect, Required: true, Options: options("low", "medium", "high"), Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: workflowOptions(), Half: true},
			{Name: "description", Label: "Description", Type: manager.FieldTextarea},
		},
		Store: c.Tickets,
	}
}

func workflowOptions() []manager.Option {
	return options("pending", "on_process", "review", "completed")
}

func (c *Collections) ChangeRequestResource() manager.Resource[ChangeRequest] {
	return manager.Resource[ChangeRequest]{
		Slug: "change-requests", Entity: "changeRequests", Title: "Change Requests", Singular: "Change Request",
		Description:       "Proposed changes awaiting review.",
		SearchKey:         "title",
		SearchPlaceholder: "Search change requests...",
		Columns: []table.Column[ChangeRequest]{
			sortable[ChangeRequest]("title", "Title"),
			{Key: "impact", Header: "Impact", Sortable: true, Render: manager.Badge[ChangeRequest]("impact")},
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[ChangeRequest]("status")},
			sortable[ChangeRequest]("requester", "Requester"),
			created[ChangeRequest](),
		},
		Fields: []manager.Field{
			{Name: "title", Label: "Title", Type: manager.FieldText, Required: true},
			{Name: "requester", Label: "Requester", Type: manager.FieldText, Required: true},
			{Name: "impact", Label: "Impact", Type: manager.FieldSelect, Required: true, Options: options("low", "medium", "high"), Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: workflowOptions(), Half: true},
			{Name: "description", Label: "Description", Type: manager.FieldTextarea},
		},
		Store: c.ChangeRequests,
	}
}

func (c *Collections) AttendanceResource() manager.Resource[Attendance] {
	return manager.Resource[Attendance]{
		Slug: "attendance", Entity: "attendance", Title: "Attendance", Singular: "Attendance Record",
		Description:       "Daily check-in and check-out log.",
		SearchKey:         "employeeName",
		SearchPlaceholder: "Search attendance records...",
		Columns: []table.Column[Attendance]{
			sortable[Attendance]("employeeName", "Employee"),
			sortable[Attendance]("date", "Date"),
			sortable[Attendance]("checkIn", "Check In"),
			sortable[Attendance]("checkOut", "Check Out"),
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[Attendance]("status")},
			created[Attendance](),
		},
		Fields: []manager.Field{
			{Name: "employeeName", Label: "Employee Name", Type: manager.FieldText, Required: true, Half: true},
			{Name: "employeeEmail", Label: "Employee Email", Type: manager.FieldEmail, Required: true, Half: true},
			{Name: "date", Label: "Date", Type: manager.FieldDate, Required: true, Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: options("present", "absent", "late", "on_leave", "sick"), Half: true},
			{Name: "checkIn", Label: "Check In", Type: manager.FieldTime, Half: true},
			{Name: "checkOut", Label: "Check Out", Type: manager.FieldTime, Half: true},
			{Name: "notes", Label: "Notes", Type: manager.FieldTextarea},
		},
		Store: c.Attendance,
	}
}

func (c *Collections) KPIResource() manager.Resource[KPI] {
	return manager.Resource[KPI]{
		Slug: "kpi", Entity: "kpi", Title: "KPI", Singular: "KPI",
		Description:       "Key performance indicators and their current values.",
		SearchKey:         "name",
		SearchPlaceholder: "Search KPIs...",
		Columns: []table.Column[KPI]{
			sortable[KPI]("name", "KPI Name"),
			{Key: "target", Header: "Target", Sortable: true, Render: withUnit("target")},
			{Key: "current", Header: "Current", Sortable: true, Render: withUnit("current")},
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[KPI]("status")},
			{Key: "frequency", Header: "Frequency", Sortable: true, Render: manager.Badge[KPI]("frequency")},
			sortable[KPI]("owner", "Owner"),
		},
		Fields: []manager.Field{
			{Name: "name", Label: "KPI Name", Type: manager.FieldText, Required: true},
			{Name: "description", Label: "Description", Type: manager.FieldTextarea},
			{Name: "target", Label: "Target Value", Type: manager.FieldNumber, Step: "any", Half: true},
			{Name: "current", Label: "Current Value", Type: manager.FieldNumber, Step: "any", Half: true},
			{Name: "unit", Label: "Unit", Type: manager.FieldText, Placeholder: "e.g. %, USD, tickets", Half: true},
			{Name: "owner", Label: "Owner", Type: manager.FieldText, Half: true},
			{Name: "frequency", Label: "Frequency", Type: manager.FieldSelect, Required: true, Options: options("daily", "weekly", "monthly", "quarterly", "yearly"), Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: options("on_track", "at_risk", "off_track"), Half: true},
		},
		Store: c.KPIs,
	}
}

func withUnit(key string) table.Renderer[KPI] {
	return table.RenderFunc[KPI](func(k KPI) template.HTML {
		value := table.Stringify(k.Field(key))
		if k.Unit != "" {
			value += " " + k.Unit
		}
		return template.HTML(template.HTMLEscapeString(value))
	})
}

func (c *Collections) OKRResource() manager.Resource[OKR] {
	return manager.Resource[OKR]{
		Slug: "okr", Entity: "okr", Title: "OKR", Singular: "OKR",
		Description:       "Objectives and the key results that measure them.",
		SearchKey:         "objective",
		SearchPlaceholder: "Search OKRs...",
		Columns: []table.Column[OKR]{
			sortable[OKR]("objective", "Objective"),
			{Key: "progress", Header: "Progress", Sortable: true, Render: manager.Percent[OKR]("progress")},
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[OKR]("status")},
			sortable[OKR]("quarter", "Quarter"),
			sortable[OKR]("owner", "Owner"),
		},
		Fields: []manager.Field{
			{Name: "objective", Label: "Objective", Type: manager.FieldText, Required: true},
			{Name: "keyResults", Label: "Key Results", Type: manager.FieldLines, Placeholder: "One key result per line"},
			{Name: "progress", Label: "Progress (%)", Type: manager.FieldNumber, Step: "1", Half: true},
			{Name: "quarter", Label: "Quarter", Type: manager.FieldText, Placeholder: "e.g. Q1 2024", Half: true},
			{Name: "owner", Label: "Owner", Type: manager.FieldText, Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: options("not_started", "in_progress", "completed", "cancelled"), Half: true},
		},
		Store: c.OKRs,
	}
}

func (c *Collections) AssetResource() manager.Resource[Asset] {
	return manager.Resource[Asset]{
		Slug: "assets", Entity: "assets", Title: "Assets", Singular: "Asset",
		Description:       "Company equipment and who holds it.",
		SearchKey:         "name",
		SearchPlaceholder: "Search assets...",
		Columns: []table.Column[Asset]{
			sortable[Asset]("name", "Name"),
			sortable[Asset]("category", "Category"),
			{Key: "status", Header: "Status", Sortable: true, Render: manager.Badge[Asset]("status")},
			sortable[Asset]("owner", "Owner"),
			created[Asset](),
		},
		Fields: []manager.Field{
			{Name: "name", Label: "Name", Type: manager.FieldText, Required: true},
			{Name: "category", Label: "Category", Type: manager.FieldText, Required: true, Placeholder: "e.g. Laptop", Half: true},
			{Name: "status", Label: "Status", Type: manager.FieldSelect, Required: true, Options: options("active", "inactive", "maintenance"), Half: true},
			{Name: "owner", Label: "Owner", Type: manager.FieldText},
			{Name: "description", Label: "Description", Type: manager.FieldTextarea},
		},
		Store: c.Assets,
	}
}
