package hr

import "github.com/odyssey-erp/odyssey-admin/internal/rbac"

// Storage slots, one per kind.
const (
	KeyUsers          = "adminDashboardUsers"
	KeyRoles          = "adminDashboardRoles"
	KeyContracts      = "adminDashboardContracts"
	KeyEmailAccounts  = "adminDashboardEmailAccounts"
	KeyPayrolls       = "adminDashboardPayrolls"
	KeyTickets        = "adminDashboardTickets"
	KeyChangeRequests = "adminDashboardChangeRequests"
	KeyAttendance     = "adminDashboardAttendance"
	KeyKPIs           = "adminDashboardKPIs"
	KeyOKRs           = "adminDashboardOKRs"
	KeyAssets         = "adminDashboardAssets"
)

// Keys lists every record slot.
func Keys() []string {
	return []string{
		KeyUsers, KeyRoles, KeyContracts, KeyEmailAccounts, KeyPayrolls, KeyTickets,
		KeyChangeRequests, KeyAttendance, KeyKPIs, KeyOKRs, KeyAssets,
	}
}

// SeedUsers mirrors the demo sign-in accounts plus two staff records.
func SeedUsers() []User {
	return []User{
		{ID: "1", Email: "admin@example.com", Name: "Admin User", Role: rbac.RoleAdmin, Status: StatusActive, CreatedAt: "2024-01-01",
			Division: "IT Division", Organization: "Head Office", Position: "System Administrator", Department: "Information Technology"},
		{ID: "2", Email: "manager@example.com", Name: "Manager User", Role: rbac.RoleManager, Status: StatusActive, CreatedAt: "2024-01-02",
			Division: "Operations Division", Organization: "Regional Office", Position: "Operations Manager", Department: "Operations"},
		{ID: "3", Email: "user@example.com", Name: "Regular User", Role: rbac.RoleUser, Status: StatusActive, CreatedAt: "2024-01-03",
			Division: "HR Division", Organization: "Head Office", Position: "HR Specialist", Department: "Human Resources"},
		{ID: "4", Email: "finance@example.com", Name: "Finance User", Role: rbac.RoleUser, Status: StatusActive, CreatedAt: "2024-01-04",
			Division: "Finance Division", Organization: "Head Office", Position: "Financial Analyst", Department: "Finance"},
		{ID: "5", Email: "marketing@example.com", Name: "Marketing User", Role: rbac.RoleUser, Status: StatusInactive, CreatedAt: "2024-01-05",
			Division: "Marketing Division", Organization: "Branch Office", Position: "Marketing Coordinator", Department: "Marketing"},
	}
}

// SeedRoles derives the built-in roles from the policy so the two never disagree.
func SeedRoles(policy *rbac.Policy) []Role {
	names := func(role string) []string {
		perms := policy.Permissions(role)
		out := make([]string, len(perms))
		for i, p := range perms {
			out[i] = p.String()
		}
		return out
	}
	return []Role{
		{ID: rbac.RoleAdmin, Name: "Administrator", Description: "Full system access with all permissions", Permissions: names(rbac.RoleAdmin), CreatedAt: "2024-01-01"},
		{ID: rbac.RoleManager, Name: "Manager", Description: "Can manage users and view reports", Permissions: names(rbac.RoleManager), CreatedAt: "2024-01-01"},
		{ID: rbac.RoleUser, Name: "User", Description: "Basic user with limited access", Permissions: names(rbac.RoleUser), CreatedAt: "2024-01-01"},
	}
}

func SeedContracts() []Contract {
	return []Contract{
		{ID: "c-1", Title: "Employee Contract - John Doe", Party: "John Doe", StartDate: "2024-01-01", EndDate: "2025-01-01",
			Status: "active", Type: "employee", CreatedAt: "2024-01-02", Notes: "Full-time employee contract"},
		{ID: "c-2", Title: "Freelance Design Work", Party: "Jane Smith", StartDate: "2024-06-01", EndDate: "2024-12-31",
			Status: "active", Type: "freelance", CreatedAt: "2024-05-15", Notes: "UI/UX design project"},
		{ID: "c-3", Title: "Internship Program", Party: "Mike Johnson", StartDate: "2024-09-01", EndDate: "2024-12-31",
			Status: "active", Type: "internship", CreatedAt: "2024-08-15", Notes: "Software development internship"},
		{ID: "c-4", Title: "Vendor Service Agreement", Party: "Tech Solutions Ltd.", StartDate: "2024-03-01", EndDate: "2025-02-28",
			Status: "active", Type: "vendor", CreatedAt: "2024-02-15", Notes: "IT support services"},
	}
}

func SeedEmailAccounts() []EmailAccount {
	return []EmailAccount{
		{ID: "ea-1", Address: "noreply@example.com", Provider: "Gmail", Status: StatusActive, Description: "Default outbound address", CreatedAt: "2024-01-05"},
		{ID: "ea-2", Address: "support@example.com", Provider: "AWS SES", Status: StatusInactive, Description: "Support inbox (paused)", CreatedAt: "2024-02-10"},
	}
}

func SeedPayrolls() []Payroll {
	return []Payroll{
		{ID: "p-1", EmployeeName: "Admin User", EmployeeEmail: "admin@example.com", Period: "2025-08",
			GrossPay: 5000, Deductions: 500, NetPay: 4500, Status: "paid", CreatedAt: "2025-08-31", Notes: "Monthly salary"},
	}
}

func SeedTickets() []Ticket {
	return []Ticket{
		{ID: "t-1", Title: "Cannot login", Requester: "user@example.com", Priority: "high", Status: "pending",
			CreatedAt: "2025-09-01", Description: "User cannot login with correct password"},
		{ID: "t-2", Title: "Database optimization", Requester: "admin@example.com", Priority: "medium", Status: "on_process",
			CreatedAt: "2025-09-02", Description: "Optimize database queries for better performance"},
		{ID: "t-3", Title: "UI Design Review", Requester: "designer@example.com", Priority: "low", Status: "review",
			CreatedAt: "2025-09-03", Description: "Review new UI design mockups"},
		{ID: "t-4", Title: "Bug Fix - Payment Gateway", Requester: "dev@example.com", Priority: "high", Status: "completed",
			CreatedAt: "2025-09-04", Description: "Fixed payment gateway integration issue"},
	}
}

func SeedChangeRequests() []ChangeRequest {
	return []ChangeRequest{
		{ID: "cr-1", Title: "Increase password length", Requester: "manager@example.com", Impact: "medium", Status: "pending",
			CreatedAt: "2025-09-02", Description: "Change minimum from 8 to 12 characters"},
		{ID: "cr-2", Title: "Database migration", Requester: "admin@example.com", Impact: "high", Status: "on_process",
			CreatedAt: "2025-09-03", Description: "Migrate database to new version"},
		{ID: "cr-3", Title: "UI/UX improvements", Requester: "designer@example.com", Impact: "low", Status: "review",
			CreatedAt: "2025-09-04", Description: "Review and approve new UI design changes"},
		{ID: "cr-4", Title: "Security patch deployment", Requester: "security@example.com", Impact: "high", Status: "completed",
			CreatedAt: "2025-09-05", Description: "Deploy critical security patches"},
	}
}

func SeedAttendance() []Attendance {
	return []Attendance{
		{ID: "a-1", EmployeeName: "Admin User", EmployeeEmail: "admin@example.com", Date: "2025-09-05",
			CheckIn: "09:05", CheckOut: "17:10", Status: "late", CreatedAt: "2025-09-05", Notes: "Traffic delay"},
	}
}

func SeedKPIs() []KPI {
	return []KPI{
		{ID: "kpi-1", Name: "Customer Satisfaction", Description: "Average customer satisfaction score", Target: 4.5, Current: 4.2,
			Unit: "out of 5", Frequency: "monthly", Status: "at_risk", CreatedAt: "2025-09-01", Owner: "Customer Success Team"},
	}
}

func SeedOKRs() []OKR {
	return []OKR{
		{ID: "okr-1", Objective: "Improve User Experience", KeyResults: []string{
			"Reduce page load time by 50%",
			"Achieve 95% user satisfaction score",
			"Decrease support tickets by 30%",
		}, Progress: 65, Quarter: "Q3 2025", Status: "in_progress", CreatedAt: "2025-09-01", Owner: "Product Team"},
	}
}

func SeedAssets() []Asset {
	return []Asset{
		{ID: "asset-1", Name: "Laptop - MacBook Pro", Category: "Hardware", Status: StatusActive, Owner: "Admin User",
			CreatedAt: "2024-01-10", Description: "Primary admin laptop"},
		{ID: "asset-2", Name: "GitHub Organization", Category: "Software", Status: StatusActive, Owner: "Manager User",
			CreatedAt: "2024-01-12", Description: "Version control hosting"},
	}
}
