package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// HomePath is where a successful sign-in lands.
const HomePath = "/dashboard"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	renderer       rbac.PageRenderer
	sessionManager *shared.SessionManager
	csrf           *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, renderer rbac.PageRenderer, sessionManager *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		renderer:       renderer,
		sessionManager: sessionManager,
		csrf:           csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Next     string
}

// LoginPageData feeds pages/login.html.
type LoginPageData struct {
	Form   loginForm
	Errors map[string]string
	Hints  []Account
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if FromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, HomePath, http.StatusSeeOther)
		return
	}
	data := LoginPageData{Form: loginForm{Next: r.URL.Query().Get("next")}, Hints: demoHints()}
	h.renderer.Page(w, r, "pages/login.html", "Sign in", data, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				errs[fieldErr.Field()] = fieldMessage(fieldErr)
			}
		}
	}

	if len(errs) == 0 {
		authSess := FromContext(r.Context())
		if authSess.Login(form.Email, form.Password) {
			p, _ := authSess.Principal()
			sess := shared.SessionFromContext(r.Context())
			if sess != nil {
				h.sessionManager.Renew(sess)
				if _, err := h.csrf.RotateToken(r.Context(), sess); err != nil {
					h.logger.Warn("rotate csrf token", slog.Any("error", err))
				}
			} else {
				h.logger.Error("session missing during login")
			}
			h.logger.Info("user signed in", slog.String("user_id", p.ID), slog.String("role", p.Role))
			shared.Notify(r.Context(), shared.FlashSuccess, "Welcome back", p.Name)
			http.Redirect(w, r, safeNext(form.Next), http.StatusSeeOther)
			return
		}
		h.logger.Info("sign in rejected", slog.String("email", form.Email))
		errs["general"] = shared.UserSafeMessage(shared.ErrInvalidCredentials)
	}

	form.Password = ""
	data := LoginPageData{Form: form, Errors: errs, Hints: demoHints()}
	h.renderer.Page(w, r, "pages/login.html", "Sign in", data, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	authSess := FromContext(r.Context())
	if p, ok := authSess.Principal(); ok {
		h.logger.Info("user signed out", slog.String("user_id", p.ID))
	}
	authSess.Logout()
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		// The old identifier is deleted on commit; only the toast carries over.
		sess.Clear()
		h.sessionManager.Renew(sess)
		if _, err := h.csrf.RotateToken(r.Context(), sess); err != nil {
			h.logger.Warn("rotate csrf token", slog.Any("error", err))
		}
	}
	shared.Notify(r.Context(), shared.FlashSuccess, "Signed out", "")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	}
	return "is invalid"
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return HomePath
	}
	return next
}

// demoHints lists the demo sign-ins shown under the form.
func demoHints() []Account {
	return DefaultAccounts()
}
