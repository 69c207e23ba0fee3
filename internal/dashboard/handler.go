// Package dashboard serves the signed-in home page and the settings screen.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/manager"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

// Backuper starts a storage backup. queued is true when it will run later.
type Backuper interface {
	Backup(ctx context.Context, payload jobs.BackupPayload) (queued bool, err error)
}

// Deps wires Handler.
type Deps struct {
	Logger   *slog.Logger
	Renderer rbac.PageRenderer
	RBAC     rbac.Middleware
	Modules  []manager.Module
	Storage  storage.Storage
	Backups  Backuper
	// Driver names the storage backend shown on the settings page.
	Driver string
}

// Handler serves /dashboard and /dashboard/settings.
type Handler struct {
	deps Deps
}

// NewHandler builds Handler instance.
func NewHandler(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Handler{deps: deps}
}

// MountRoutes registers the home and settings routes relative to /dashboard.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.deps.RBAC.Require(rbac.PermDashboardAccess)).Get("/", h.home)
	r.Route("/settings", func(r chi.Router) {
		r.Use(h.deps.RBAC.Require(rbac.PermSettingsManage))
		r.Get("/", h.settings)
		r.Post("/backup", h.backup)
	})
}

// Card is one counter on the home page.
type Card struct {
	Title string
	Count int
	Href  string
}

// HomePage feeds pages/dashboard.html.
type HomePage struct {
	Name       string
	Role       string
	Cards      []Card
	LastBackup *jobs.BackupMeta
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	p, _ := sess.Principal()
	page := HomePage{Name: p.Name, Role: p.Role, Cards: Cards(sess, h.deps.Modules)}
	if sess.HasPermission(rbac.PermSettingsManage) {
		page.LastBackup = h.lastBackup(r.Context())
	}
	h.deps.Renderer.Page(w, r, "pages/dashboard.html", "Dashboard", page, http.StatusOK)
}

// Cards lists the record counts the session may read, in module order.
func Cards(sess *auth.Session, modules []manager.Module) []Card {
	cards := make([]Card, 0, len(modules))
	for _, m := range modules {
		if !sess.HasPermission(m.ReadPermission()) {
			continue
		}
		cards = append(cards, Card{Title: m.Title(), Count: m.Count(), Href: m.Path()})
	}
	return cards
}

// SettingsPage feeds pages/settings.html.
type SettingsPage struct {
	Driver     string
	Queued     bool
	LastBackup *jobs.BackupMeta
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	_, queued := h.deps.Backups.(*jobs.Client)
	h.deps.Renderer.Page(w, r, "pages/settings.html", "Settings", SettingsPage{
		Driver:     h.deps.Driver,
		Queued:     queued,
		LastBackup: h.lastBackup(r.Context()),
	}, http.StatusOK)
}

func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, _ := auth.FromContext(ctx).Principal()
	logger := h.deps.Logger.With(slog.String("requested_by", p.Email))

	if h.deps.Backups == nil {
		shared.Notify(ctx, shared.FlashError, "Error", "Backups are not configured")
		http.Redirect(w, r, "/dashboard/settings", http.StatusSeeOther)
		return
	}
	queued, err := h.deps.Backups.Backup(ctx, jobs.BackupPayload{Reason: jobs.ReasonManual, RequestedBy: p.Email})
	switch {
	case errors.Is(err, jobs.ErrBackupQueued):
		shared.Notify(ctx, shared.FlashInfo, "Backup already queued", "A backup will run shortly")
	case err != nil:
		logger.Error("start backup", slog.Any("error", err))
		shared.Notify(ctx, shared.FlashError, "Error", "Failed to start backup")
	case queued:
		logger.Info("backup queued")
		shared.Notify(ctx, shared.FlashSuccess, "Backup queued", "The backup will run shortly")
	default:
		meta := h.lastBackup(ctx)
		desc := "Backup has been completed successfully"
		if meta != nil {
			desc = fmt.Sprintf("%d collections saved", meta.Slots)
		}
		logger.Info("backup completed")
		shared.Notify(ctx, shared.FlashSuccess, "Backup completed", desc)
	}
	http.Redirect(w, r, "/dashboard/settings", http.StatusSeeOther)
}

func (h *Handler) lastBackup(ctx context.Context) *jobs.BackupMeta {
	if h.deps.Storage == nil {
		return nil
	}
	meta, ok, err := jobs.LastBackup(ctx, h.deps.Storage)
	if err != nil {
		h.deps.Logger.Warn("read last backup", slog.Any("error", err))
		return nil
	}
	if !ok {
		return nil
	}
	return &meta
}
