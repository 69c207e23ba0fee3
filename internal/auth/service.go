package auth

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
)

// Slot is the durable key-value area a session persists its principal in.
// *shared.Session satisfies it.
type Slot interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// Authenticator restores and drives auth sessions.
type Authenticator struct {
	directory *Directory
	policy    *rbac.Policy
	logger    *slog.Logger
	metrics   *observability.Metrics
	validate  *validator.Validate
}

// NewAuthenticator wires a directory and policy. A nil logger uses slog.Default.
func NewAuthenticator(dir *Directory, policy *rbac.Policy, logger *slog.Logger, metrics *observability.Metrics) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		directory: dir,
		policy:    policy,
		logger:    logger,
		metrics:   metrics,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Policy returns the role grants used for permission checks.
func (a *Authenticator) Policy() *rbac.Policy { return a.policy }

// Restore builds a session from slot. A missing or malformed principal yields an
// anonymous session; malformed data is cleared. slot may be nil.
func (a *Authenticator) Restore(slot Slot) *Session {
	s := &Session{auth: a, slot: slot}
	if slot == nil {
		return s
	}
	raw := slot.Get(UserKey)
	if raw == "" {
		return s
	}
	var p rbac.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		a.discard(slot, err)
		return s
	}
	if err := a.validate.Struct(p); err != nil {
		a.discard(slot, err)
		return s
	}
	s.principal = &p
	return s
}

func (a *Authenticator) discard(slot Slot, err error) {
	a.logger.Warn("auth stored principal unreadable, signing out", slog.Any("error", err))
	slot.Delete(UserKey)
}

// Session is the authorization state of one visitor: anonymous or signed in.
type Session struct {
	auth      *Authenticator
	slot      Slot
	mu        sync.RWMutex
	principal *rbac.Principal
}

// Anonymous returns a signed-out session that persists nothing.
func Anonymous() *Session { return &Session{} }

// Login signs in when email and password match an account. On failure the
// current state is left untouched.
func (s *Session) Login(email, password string) bool {
	var dir *Directory
	if s.auth != nil {
		dir = s.auth.directory
	}
	p, ok := dir.Lookup(email, password)
	if s.auth != nil {
		s.auth.metrics.LoginAttempt(ok)
	}
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = &p
	if s.slot != nil {
		data, err := json.Marshal(p)
		if err == nil {
			s.slot.Set(UserKey, string(data))
		}
	}
	return true
}

// Logout clears the principal and its persisted copy. It is idempotent.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = nil
	if s.slot != nil {
		s.slot.Delete(UserKey)
	}
}

// Principal returns the signed-in principal.
func (s *Session) Principal() (rbac.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return rbac.Principal{}, false
	}
	return *s.principal, true
}

// IsAuthenticated reports whether a principal is signed in.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.Principal()
	return ok
}

// HasPermission reports whether the principal's role grants perm.
// Anonymous sessions and unknown roles are denied.
func (s *Session) HasPermission(perm rbac.Permission) bool {
	p, ok := s.Principal()
	if !ok || s.auth == nil {
		return false
	}
	return s.auth.policy.Allows(p.Role, perm)
}
