package manager

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/records"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/table"
)

// Module is a mounted record screen, independent of its record type.
type Module interface {
	Slug() string
	Title() string
	Path() string
	ReadPermission() rbac.Permission
	Count() int
	MountRoutes(r chi.Router)
}

// Deps are shared by every Handler.
type Deps struct {
	Logger   *slog.Logger
	Renderer rbac.PageRenderer
	CSRF     *shared.CSRFManager
	RBAC     rbac.Middleware
	Metrics  *observability.Metrics
	PageSize int
	// NotFound renders the missing record page. Defaults to http.NotFound.
	NotFound http.HandlerFunc
}

// Handler serves one Resource.
type Handler[T records.Record] struct {
	res  Resource[T]
	deps Deps
}

// NewHandler builds Handler instance.
func NewHandler[T records.Record](res Resource[T], deps Deps) *Handler[T] {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.NotFound == nil {
		deps.NotFound = http.NotFound
	}
	return &Handler[T]{res: res, deps: deps}
}

func (h *Handler[T]) Slug() string { return h.res.Slug }
func (h *Handler[T]) Title() string { return h.res.Title }
func (h *Handler[T]) Path() string { return h.res.Path() }
func (h *Handler[T]) ReadPermission() rbac.Permission { return h.res.Permission(rbac.ActionRead) }
func (h *Handler[T]) Count() int { return h.res.Store.Len() }

// MountRoutes registers the record routes relative to the resource path.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.deps.RBAC.Require(h.ReadPermission()))
		r.Get("/", h.list)
		r.Get("/new", h.newForm)
		r.Post("/", h.create)
		r.Get("/{id}/edit", h.editForm)
		r.Post("/{id}/edit", h.update)
		r.Post("/{id}/delete", h.remove)
	})
}

// ListPage feeds pages/records.html.
type ListPage struct {
	Title       string
	Description string
	Singular    string
	Path        string
	CanCreate   bool
	Count       int
	Table       table.View
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := auth.FromContext(ctx)
	csrfToken := h.csrfToken(r)

	canUpdate := sess.HasPermission(h.res.Permission(rbac.ActionUpdate))
	canDelete := sess.HasPermission(h.res.Permission(rbac.ActionDelete))

	items := h.res.Store.List(ctx)
	opts := []table.Option[T]{
		table.WithSearchKey[T](h.res.SearchKey),
		table.WithSearchPlaceholder[T](h.res.SearchPlaceholder),
		table.WithPageSize[T](h.deps.PageSize),
		table.WithState[T](table.StateFromQuery(r.URL.Query())),
	}
	if canUpdate || canDelete || h.res.Links != nil {
		opts = append(opts, table.WithActions(func(rec T) template.HTML {
			return h.rowActions(rec, csrfToken, canUpdate, canDelete && h.res.deletable(rec))
		}))
	}
	tbl := table.New(items, h.res.Columns, opts...)

	h.deps.Renderer.Page(w, r, "pages/records.html", h.res.Title, ListPage{
		Title:       h.res.Title,
		Description: h.res.Description,
		Singular:    h.res.Singular,
		Path:        h.res.Path(),
		CanCreate:   sess.HasPermission(h.res.Permission(rbac.ActionCreate)),
		Count:       len(items),
		Table:       tbl.View(),
	}, http.StatusOK)
}

func (h *Handler[T]) newForm(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r, rbac.ActionCreate) {
		return
	}
	h.renderForm(w, r, h.createPage(recordViews[T](r.Context(), h.res.Fields, nil), ""), http.StatusOK)
}

func (h *Handler[T]) create(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r, rbac.ActionCreate) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	fields, errs := parseFields(r, h.res.Fields)
	if len(errs) > 0 {
		h.renderForm(w, r, h.createPage(postedViews(r, h.res.Fields, errs), ""), http.StatusBadRequest)
		return
	}
	rec, err := h.res.Store.Create(r.Context(), fields)
	if err != nil {
		status, errs, general := h.classify(err, "create")
		h.renderForm(w, r, h.createPage(postedViews(r, h.res.Fields, errs), general), status)
		return
	}
	h.deps.Logger.Info("record created", slog.String("kind", h.res.Store.Kind()), slog.String("id", rec.RecordID()))
	h.redirectWithFlash(w, r, shared.FlashSuccess, h.res.Singular+" created", h.res.Singular+" has been created successfully")
}

func (h *Handler[T]) editForm(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r, rbac.ActionUpdate) {
		return
	}
	id := chi.URLParam(r, "id")
	rec, ok := h.res.Store.GetByID(r.Context(), id)
	if !ok {
		h.deps.NotFound(w, r)
		return
	}
	h.renderForm(w, r, h.editPage(id, recordViews(r.Context(), h.res.Fields, &rec), ""), http.StatusOK)
}

func (h *Handler[T]) update(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r, rbac.ActionUpdate) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	fields, errs := parseFields(r, h.res.Fields)
	if len(errs) > 0 {
		h.renderForm(w, r, h.editPage(id, postedViews(r, h.res.Fields, errs), ""), http.StatusBadRequest)
		return
	}
	_, found, err := h.res.Store.Update(r.Context(), id, fields)
	switch {
	case err != nil:
		status, errs, general := h.classify(err, "update")
		h.renderForm(w, r, h.editPage(id, postedViews(r, h.res.Fields, errs), general), status)
		return
	case !found:
		h.redirectWithFlash(w, r, shared.FlashError, "Error", shared.UserSafeMessage(shared.ErrNotFound))
		return
	}
	h.deps.Logger.Info("record updated", slog.String("kind", h.res.Store.Kind()), slog.String("id", id))
	h.redirectWithFlash(w, r, shared.FlashSuccess, h.res.Singular+" updated", h.res.Singular+" has been updated successfully")
}

func (h *Handler[T]) remove(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r, rbac.ActionDelete) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.res.Store.Delete(r.Context(), id); err != nil {
		msg := shared.UserSafeMessage(err)
		if !errors.Is(err, records.ErrProtected) {
			h.deps.Logger.Error("delete record", slog.String("kind", h.res.Store.Kind()), slog.String("id", id), slog.Any("error", err))
			msg = "Failed to delete " + strings.ToLower(h.res.Singular)
		}
		h.redirectWithFlash(w, r, shared.FlashError, "Error", msg)
		return
	}
	h.deps.Logger.Info("record deleted", slog.String("kind", h.res.Store.Kind()), slog.String("id", id))
	h.redirectWithFlash(w, r, shared.FlashSuccess, h.res.Singular+" deleted", h.res.Singular+" has been deleted successfully")
}

// allowed re-checks an entity permission before a mutation. Denials flash and
// redirect to the list without touching the store.
func (h *Handler[T]) allowed(w http.ResponseWriter, r *http.Request, action rbac.Action) bool {
	perm := h.res.Permission(action)
	if auth.HasPermission(r.Context(), perm) {
		return true
	}
	h.deps.Metrics.PermissionDenied(perm.String())
	h.deps.Logger.Warn("permission denied", slog.String("permission", perm.String()), slog.String("path", r.URL.Path))
	h.redirectWithFlash(w, r, shared.FlashError, "Permission denied",
		fmt.Sprintf("You don't have permission to %s %s", action, strings.ToLower(h.res.Title)))
	return false
}

// classify maps a store error to a status, per-field messages and a banner.
func (h *Handler[T]) classify(err error, op string) (int, map[string]string, string) {
	var verr *records.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Fields, "Please correct the highlighted fields"
	case errors.Is(err, records.ErrDuplicate):
		return http.StatusConflict, nil, fmt.Sprintf("A %s with the same id already exists", strings.ToLower(h.res.Singular))
	}
	h.deps.Logger.Error(op+" record", slog.String("kind", h.res.Store.Kind()), slog.Any("error", err))
	return http.StatusInternalServerError, nil, fmt.Sprintf("Failed to %s %s", op, strings.ToLower(h.res.Singular))
}

func (h *Handler[T]) createPage(fields []FieldView, general string) FormPage {
	return FormPage{
		Heading:     "Create " + h.res.Singular,
		Description: "Add a new " + strings.ToLower(h.res.Singular) + ".",
		Action:      h.res.Path(),
		Cancel:      h.res.Path(),
		Submit:      "Create",
		Fields:      fields,
		Error:       general,
	}
}

func (h *Handler[T]) editPage(id string, fields []FieldView, general string) FormPage {
	return FormPage{
		Heading:     "Edit " + h.res.Singular,
		Description: "Update " + strings.ToLower(h.res.Singular) + " details.",
		Action:      h.res.Path() + "/" + id + "/edit",
		Cancel:      h.res.Path(),
		Submit:      "Update",
		Fields:      fields,
		Error:       general,
	}
}

func (h *Handler[T]) renderForm(w http.ResponseWriter, r *http.Request, page FormPage, status int) {
	h.deps.Renderer.Page(w, r, "pages/record_form.html", page.Heading, page, status)
}

func (h *Handler[T]) redirectWithFlash(w http.ResponseWriter, r *http.Request, kind, message, description string) {
	shared.Notify(r.Context(), kind, message, description)
	http.Redirect(w, r, h.res.Path(), http.StatusSeeOther)
}

func (h *Handler[T]) csrfToken(r *http.Request) string {
	sess := shared.SessionFromContext(r.Context())
	if h.deps.CSRF == nil || sess == nil {
		return ""
	}
	token, _ := h.deps.CSRF.EnsureToken(r.Context(), sess)
	return token
}

var actionsTemplate = template.Must(template.New("actions").Parse(`<div class="row-actions">
{{- range .Links}}<a class="btn btn-ghost btn-sm" href="{{.Href}}">{{.Label}}</a>{{end -}}
{{- if .CanEdit}}<a class="btn btn-outline btn-sm" href="{{.Base}}/{{.ID}}/edit">Edit</a>{{end -}}
{{- if .CanDelete}}<form method="post" action="{{.Base}}/{{.ID}}/delete" data-confirm="Are you sure you want to delete this {{.Noun}}?">
<input type="hidden" name="csrf_token" value="{{.CSRF}}"><button type="submit" class="btn btn-danger btn-sm">Delete</button></form>{{end -}}
</div>`))

type actionsData struct {
	Base      string
	ID        string
	Noun      string
	CSRF      string
	CanEdit   bool
	CanDelete bool
	Links     []Link
}

func (h *Handler[T]) rowActions(rec T, csrfToken string, canEdit, canDelete bool) template.HTML {
	data := actionsData{
		Base:      h.res.Path(),
		ID:        rec.RecordID(),
		Noun:      strings.ToLower(h.res.Singular),
		CSRF:      csrfToken,
		CanEdit:   canEdit,
		CanDelete: canDelete,
	}
	if h.res.Links != nil {
		data.Links = h.res.Links(rec)
	}
	var buf bytes.Buffer
	if err := actionsTemplate.Execute(&buf, data); err != nil {
		h.deps.Logger.Error("render row actions", slog.Any("error", err))
		return ""
	}
	return template.HTML(buf.String())
}
