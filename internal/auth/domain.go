package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
)

// UserKey is the session slot holding the signed-in principal as JSON.
const UserKey = "adminDashboardUser"

// Account is a sign-in identity: a principal plus its password.
type Account struct {
	rbac.Principal
	Password string
}

type credential struct {
	principal rbac.Principal
	hash      []byte
}

// Directory resolves email and password pairs to principals.
type Directory struct {
	byEmail map[string]credential
}

// DefaultAccounts are the built-in demo identities.
func DefaultAccounts() []Account {
	return []Account{
		{Principal: rbac.Principal{ID: "1", Email: "admin@example.com", Name: "Admin User", Role: rbac.RoleAdmin, CreatedAt: "2024-01-01"}, Password: "admin123"},
		{Principal: rbac.Principal{ID: "2", Email: "manager@example.com", Name: "Manager User", Role: rbac.RoleManager, CreatedAt: "2024-01-02"}, Password: "manager123"},
		{Principal: rbac.Principal{ID: "3", Email: "user@example.com", Name: "Regular User", Role: rbac.RoleUser, CreatedAt: "2024-01-03"}, Password: "user123"},
	}
}

// NewDirectory hashes the account passwords. Later duplicates of an email win.
func NewDirectory(accounts []Account) (*Directory, error) {
	d := &Directory{byEmail: make(map[string]credential, len(accounts))}
	for _, acc := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		d.byEmail[acc.Email] = credential{principal: acc.Principal, hash: hash}
	}
	return d, nil
}

// DefaultDirectory is NewDirectory over DefaultAccounts.
func DefaultDirectory() *Directory {
	d, err := NewDirectory(DefaultAccounts())
	if err != nil {
		panic(err)
	}
	return d
}

// Lookup matches email exactly and verifies the password.
func (d *Directory) Lookup(email, password string) (rbac.Principal, bool) {
	if d == nil {
		return rbac.Principal{}, false
	}
	cred, ok := d.byEmail[email]
	if !ok {
		return rbac.Principal{}, false
	}
	if err := bcrypt.CompareHashAndPassword(cred.hash, []byte(password)); err != nil {
		return rbac.Principal{}, false
	}
	return cred.principal, true
}
