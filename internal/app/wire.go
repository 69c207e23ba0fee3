package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/hr"
	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
	"github.com/odyssey-erp/odyssey-admin/internal/manager"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/payslip"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

// SessionCookie names the dashboard session cookie.
const SessionCookie = "odyssey_admin_session"

// WireParams are the process-level resources the dashboard is built from.
type WireParams struct {
	Config  *Config
	Logger  *slog.Logger
	Redis   *redis.Client
	Storage storage.Storage
	// Backups overrides how manual backups start. Nil runs them inline.
	Backups   dashboard.Backuper
	Inspector *asynq.Inspector
	Metrics   *observability.Metrics
	// Directory overrides the demo accounts.
	Directory *auth.Directory
}

// App is the assembled dashboard.
type App struct {
	Handler     http.Handler
	Collections *hr.Collections
	Backup      *jobs.BackupJob
}

// Wire loads the record collections and builds every handler and the router.
func Wire(ctx context.Context, p WireParams) (*App, error) {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Metrics == nil {
		p.Metrics = observability.NewMetrics()
	}
	if p.Directory == nil {
		p.Directory = auth.DefaultDirectory()
	}
	policy := rbac.DefaultPolicy()

	cols, err := hr.Open(ctx, p.Storage, hr.Options{Logger: p.Logger, Metrics: p.Metrics, Policy: policy})
	if err != nil {
		return nil, fmt.Errorf("open collections: %w", err)
	}

	sessionManager := shared.NewSessionManager(p.Redis, shared.SessionOptions{
		CookieName: SessionCookie,
		Secret:     p.Config.SessionSecret,
		TTL:        p.Config.SessionTTL,
		Secure:     p.Config.IsProduction(),
	})
	csrfManager := shared.NewCSRFManager(p.Config.CSRFSecret)
	authenticator := auth.NewAuthenticator(p.Directory, policy, p.Logger, p.Metrics)

	engine, err := view.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	renderer := &view.Renderer{Engine: engine, CSRF: csrfManager, Logger: p.Logger}
	rbacMiddleware := rbac.Middleware{
		Subject:   auth.Subject,
		Logger:    p.Logger,
		Metrics:   p.Metrics,
		Forbidden: Forbidden(renderer),
	}

	modules := cols.Modules(manager.Deps{
		Logger:   p.Logger,
		Renderer: renderer,
		CSRF:     csrfManager,
		RBAC:     rbacMiddleware,
		Metrics:  p.Metrics,
		PageSize: p.Config.PageSize,
		NotFound: NotFound(renderer),
	})
	renderer.Chrome = NewChrome(modules)

	backupJob := jobs.NewBackupJob(p.Storage, hr.Keys(), p.Logger, jobmetrics.NewMetrics(p.Metrics.Registerer()))
	backups := p.Backups
	if backups == nil {
		backups = backupJob
	}

	payslips := payslip.NewHandler(cols.Payrolls, rbacMiddleware, p.Logger)
	router := NewRouter(RouterParams{
		Logger:         p.Logger,
		Config:         p.Config,
		Renderer:       renderer,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Authenticator:  authenticator,
		AuthHandler:    auth.NewHandler(p.Logger, renderer, sessionManager, csrfManager),
		Modules:        modules,
		ModuleRoutes: map[string]func(chi.Router){
			"payroll": payslips.MountRoutes,
		},
		DashboardHandler: dashboard.NewHandler(dashboard.Deps{
			Logger:   p.Logger,
			Renderer: renderer,
			RBAC:     rbacMiddleware,
			Modules:  modules,
			Storage:  p.Storage,
			Backups:  backups,
			Driver:   p.Config.StorageDriver,
		}),
		PermissionsHandler: rbac.NewPermissionsHandler(policy, renderer, rbacMiddleware),
		JobHandler:         jobs.NewHandler(p.Inspector, p.Storage, p.Logger),
		Metrics:            p.Metrics,
	})
	return &App{Handler: router, Collections: cols, Backup: backupJob}, nil
}
