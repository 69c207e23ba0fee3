// Package hr holds the administrative record kinds managed from the dashboard:
// people, access roles, contracts, payroll, service desk items, performance
// objectives and company assets.
package hr

// Status values shared by several kinds.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is a managed employee account. It never carries a password.
type User struct {
	ID           string `json:"id" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required"`
	Role         string `json:"role" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=active inactive"`
	Division     string `json:"division,omitempty"`
	Organization string `json:"organization,omitempty"`
	Position     string `json:"position,omitempty"`
	Department   string `json:"department,omitempty"`
	CreatedAt    string `json:"createdAt" validate:"required,date"`
}

func (u User) RecordID() string { return u.ID }

func (u User) Field(key string) any {
	switch key {
	case "id":
		return u.ID
	case "email":
		return u.Email
	case "name":
		return u.Name
	case "role":
		return u.Role
	case "status":
		return u.Status
	case "division":
		return optional(u.Division)
	case "organization":
		return optional(u.Organization)
	case "position":
		return optional(u.Position)
	case "department":
		return optional(u.Department)
	case "createdAt":
		return u.CreatedAt
	}
	return nil
}

// Role is an editable named permission bundle.
type Role struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions" validate:"dive,permission"`
	CreatedAt   string   `json:"createdAt" validate:"required,date"`
}

func (r Role) RecordID() string { return r.ID }

func (r Role) Field(key string) any {
	switch key {
	case "id":
		return r.ID
	case "name":
		return r.Name
	case "description":
		return optional(r.Description)
	case "permissions":
		return r.Permissions
	case "createdAt":
		return r.CreatedAt
	}
	return nil
}

// Contract is an agreement with an employee, contractor or vendor.
type Contract struct {
	ID        string `json:"id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Party     string `json:"party" validate:"required"`
	StartDate string `json:"startDate" validate:"required,date"`
	EndDate   string `json:"endDate" validate:"required,date"`
	Status    string `json:"status" validate:"required,oneof=active expired draft"`
	Type      string `json:"type" validate:"required,oneof=employee freelance internship vendor"`
	CreatedAt string `json:"createdAt" validate:"required,date"`
	Notes     string `json:"notes,omitempty"`
}

func (c Contract) RecordID() string { return c.ID }

func (c Contract) Field(key string) any {
	switch key {
	case "id":
		return c.ID
	case "title":
		return c.Title
	case "party":
		return c.Party
	case "startDate":
		return c.StartDate
	case "endDate":
		return c.EndDate
	case "dates":
		return c.StartDate + " - " + c.EndDate
	case "status":
		return c.Status
	case "type":
		return c.Type
	case "createdAt":
		return c.CreatedAt
	case "notes":
		return optional(c.Notes)
	}
	return nil
}

// EmailAccount is an outbound mail identity.
type EmailAccount struct {
	ID          string `json:"id" validate:"required"`
	Address     string `json:"address" validate:"required,email"`
	Provider    string `json:"provider" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=active inactive"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt" validate:"required,date"`
}

func (e EmailAccount) RecordID() string { return e.ID }

func (e EmailAccount) Field(key string) any {
	switch key {
	case "id":
		return e.ID
	case "address":
		return e.Address
	case "provider":
		return e.Provider
	case "status":
		return e.Status
	case "description":
		return optional(e.Description)
	case "createdAt":
		return e.CreatedAt
	}
	return nil
}

// Payroll is one pay run for one employee. NetPay is derived.
type Payroll struct {
	ID            string  `json:"id" validate:"required"`
	EmployeeName  string  `json:"employeeName" validate:"required"`
	EmployeeEmail string  `json:"employeeEmail" validate:"required,email"`
	Period        string  `json:"period" validate:"required,month"`
	GrossPay      float64 `json:"grossPay" validate:"gte=0"`
	Deductions    float64 `json:"deductions" validate:"gte=0"`
	NetPay        float64 `json:"netPay"`
	Status        string  `json:"status" validate:"required,oneof=pending paid failed"`
	CreatedAt     string  `json:"createdAt" validate:"required,date"`
	Notes         string  `json:"notes,omitempty"`
}

func (p Payroll) RecordID() string { return p.ID }

func (p Payroll) Field(key string) any {
	switch key {
	case "id":
		return p.ID
	case "employeeName":
		return p.EmployeeName
	case "employeeEmail":
		return p.EmployeeEmail
	case "period":
		return p.Period
	case "grossPay":
		return p.GrossPay
	case "deductions":
		return p.Deductions
	case "netPay":
		return p.NetPay
	case "status":
		return p.Status
	case "createdAt":
		return p.CreatedAt
	case "notes":
		return optional(p.Notes)
	}
	return nil
}

// Ticket is a service desk request.
type Ticket struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Requester   string `json:"requester" validate:"required"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high"`
	Status      string `json:"status" validate:"required,oneof=pending on_process review completed"`
	CreatedAt   string `json:"createdAt" validate:"required,date"`
	Description string `json:"description,omitempty"`
}

func (t Ticket) RecordID() string { return t.ID }

func (t Ticket) Field(key string) any {
	switch key {
	case "id":
		return t.ID
	case "title":
		return t.Title
	case "requester":
		return t.Requester
	case "priority":
		return t.Priority
	case "status":
		return t.Status
	case "createdAt":
		return t.CreatedAt
	case "description":
		return optional(t.Description)
	}
	return nil
}

// ChangeRequest asks for a change to systems or policy.
type ChangeRequest struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Requester   string `json:"requester" validate:"required"`
	Impact      string `json:"impact" validate:"required,oneof=low medium high"`
	Status      string `json:"status" validate:"required,oneof=pending on_process review completed"`
	CreatedAt   string `json:"createdAt" validate:"required,date"`
	Description string `json:"description,omitempty"`
}

func (c ChangeRequest) RecordID() string { return c.ID }

func (c ChangeRequest) Field(key string) any {
	switch key {
	case "id":
		return c.ID
	case "title":
		return c.Title
	case "requester":
		return c.Requester
	case "impact":
		return c.Impact
	case "status":
		return c.Status
	case "createdAt":
		return c.CreatedAt
	case "description":
		return optional(c.Description)
	}
	return nil
}

// Attendance is one employee's presence on one day.
type Attendance struct {
	ID            string `json:"id" validate:"required"`
	EmployeeName  string `json:"employeeName" validate:"required"`
	EmployeeEmail string `json:"employeeEmail" validate:"required,email"`
	Date          string `json:"date" validate:"required,date"`
	CheckIn       string `json:"checkIn" validate:"omitempty,clock"`
	CheckOut      string `json:"checkOut" validate:"omitempty,clock"`
	Status        string `json:"status" validate:"required,oneof=present absent late on_leave sick"`
	CreatedAt     string `json:"createdAt" validate:"required,date"`
	Notes         string `json:"notes,omitempty"`
}

func (a Attendance) RecordID() string { return a.ID }

func (a Attendance) Field(key string) any {
	switch key {
	case "id":
		return a.ID
	case "employeeName":
		return a.EmployeeName
	case "employeeEmail":
		return a.EmployeeEmail
	case "date":
		return a.Date
	case "checkIn":
		return optional(a.CheckIn)
	case "checkOut":
		return optional(a.CheckOut)
	case "status":
		return a.Status
	case "createdAt":
		return a.CreatedAt
	case "notes":
		return optional(a.Notes)
	}
	return nil
}

// KPI is a tracked key performance indicator.
type KPI struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Target      float64 `json:"target"`
	Current     float64 `json:"current"`
	Unit        string  `json:"unit"`
	Frequency   string  `json:"frequency" validate:"required,oneof=daily weekly monthly quarterly yearly"`
	Status      string  `json:"status" validate:"required,oneof=on_track at_risk off_track"`
	CreatedAt   string  `json:"createdAt" validate:"required,date"`
	Owner       string  `json:"owner,omitempty"`
}

func (k KPI) RecordID() string { return k.ID }

func (k KPI) Field(key string) any {
	switch key {
	case "id":
		return k.ID
	case "name":
		return k.Name
	case "description":
		return optional(k.Description)
	case "target":
		return k.Target
	case "current":
		return k.Current
	case "unit":
		return optional(k.Unit)
	case "frequency":
		return k.Frequency
	case "status":
		return k.Status
	case "createdAt":
		return k.CreatedAt
	case "owner":
		return optional(k.Owner)
	}
	return nil
}

// OKR is an objective with measurable key results.
type OKR struct {
	ID         string   `json:"id" validate:"required"`
	Objective  string   `json:"objective" validate:"required"`
	KeyResults []string `json:"keyResults"`
	Progress   float64  `json:"progress" validate:"gte=0,lte=100"`
	Quarter    string   `json:"quarter"`
	Status     string   `json:"status" validate:"required,oneof=not_started in_progress completed cancelled"`
	CreatedAt  string   `json:"createdAt" validate:"required,date"`
	Owner      string   `json:"owner,omitempty"`
}

func (o OKR) RecordID() string { return o.ID }

func (o OKR) Field(key string) any {
	switch key {
	case "id":
		return o.ID
	case "objective":
		return o.Objective
	case "keyResults":
		return o.KeyResults
	case "progress":
		return o.Progress
	case "quarter":
		return optional(o.Quarter)
	case "status":
		return o.Status
	case "createdAt":
		return o.CreatedAt
	case "owner":
		return optional(o.Owner)
	}
	return nil
}

// Asset is a tracked piece of company property.
type Asset struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=active inactive maintenance"`
	Owner       string `json:"owner"`
	CreatedAt   string `json:"createdAt" validate:"required,date"`
	Description string `json:"description,omitempty"`
}

func (a Asset) RecordID() string { return a.ID }

func (a Asset) Field(key string) any {
	switch key {
	case "id":
		return a.ID
	case "name":
		return a.Name
	case "category":
		return a.Category
	case "status":
		return a.Status
	case "owner":
		return optional(a.Owner)
	case "createdAt":
		return a.CreatedAt
	case "description":
		return optional(a.Description)
	}
	return nil
}

// optional reports blank text as missing so tables show the placeholder
// and search skips it.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
