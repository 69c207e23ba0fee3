package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/hr"
	"github.com/odyssey-erp/odyssey-admin/internal/manager"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

type recordingRenderer struct {
	name string
	data any
}

func (r *recordingRenderer) Page(w http.ResponseWriter, _ *http.Request, name, _ string, data any, status int) {
	r.name, r.data = name, data
	w.WriteHeader(status)
}

type stubBackups struct {
	queued bool
	err    error
	calls  []jobs.BackupPayload
}

func (s *stubBackups) Backup(_ context.Context, p jobs.BackupPayload) (bool, error) {
	s.calls = append(s.calls, p)
	return s.queued, s.err
}

type harness struct {
	router   chi.Router
	renderer *recordingRenderer
	storage  *storage.Memory
	sessions *shared.SessionManager
	authn    *auth.Authenticator
	email    string
	password string
	last     *shared.Session
}

var directory = auth.DefaultDirectory()

func newHarness(t *testing.T, email, password string, backups dashboard.Backuper) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mem := storage.NewMemory()
	cols, err := hr.Open(context.Background(), mem, hr.Options{})
	require.NoError(t, err)
	if backups == nil {
		backups = jobs.NewBackupJob(mem, hr.Keys(), nil, nil)
	}

	h := &harness{
		renderer: &recordingRenderer{},
		storage:  mem,
		sessions: shared.NewSessionManager(client, shared.SessionOptions{CookieName: "s", Secret: "secret", TTL: time.Hour}),
		authn:    auth.NewAuthenticator(directory, rbac.DefaultPolicy(), nil, nil),
		email:    email,
		password: password,
	}
	handler := dashboard.NewHandler(dashboard.Deps{
		Renderer: h.renderer,
		RBAC:     rbac.Middleware{Subject: auth.Subject},
		Modules:  cols.Modules(manager.Deps{}),
		Storage:  mem,
		Backups:  backups,
		Driver:   "memory",
	})
	r := chi.NewRouter()
	r.Use(h.login)
	r.Route("/dashboard", handler.MountRoutes)
	h.router = r
	return h
}

// login installs a fresh HTTP session signed in as the harness user.
func (h *harness) login(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Load(r.Context(), r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.last = sess
		h.authn.Restore(sess).Login(h.email, h.password)
		ctx := shared.ContextWithSession(r.Context(), sess)
		h.authn.Middleware(next).ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *harness) do(method, path string) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, httptest.NewRequest(method, path, nil))
	return res
}

func TestHomeShowsReadableCounters(t *testing.T) {
	h := newHarness(t, "user@example.com", "user123", nil)
	res := h.do(http.MethodGet, "/dashboard/")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "pages/dashboard.html", h.renderer.name)
	page := h.renderer.data.(dashboard.HomePage)
	assert.Equal(t, "Regular User", page.Name)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, dashboard.Card{Title: "Users", Count: 5, Href: "/dashboard/users"}, page.Cards[0])
	assert.Nil(t, page.LastBackup)
}

func TestHomeForAdminIncludesLastBackup(t *testing.T) {
	h := newHarness(t, "admin@example.com", "admin123", nil)
	_, err := jobs.NewBackupJob(h.storage, hr.Keys(), nil, nil).Run(context.Background(), jobs.BackupPayload{})
	require.NoError(t, err)

	res := h.do(http.MethodGet, "/dashboard/")
	require.Equal(t, http.StatusOK, res.Code)
	page := h.renderer.data.(dashboard.HomePage)
	assert.Len(t, page.Cards, 11)
	require.NotNil(t, page.LastBackup)
	assert.Equal(t, len(hr.Keys()), page.LastBackup.Slots)
}

func TestSettingsRequiresPermission(t *testing.T) {
	h := newHarness(t, "manager@example.com", "manager123", nil)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/dashboard/settings/").Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/dashboard/settings/backup").Code)
}

func TestSettingsPage(t *testing.T) {
	h := newHarness(t, "admin@example.com", "admin123", nil)
	res := h.do(http.MethodGet, "/dashboard/settings/")
	require.Equal(t, http.StatusOK, res.Code)
	page := h.renderer.data.(dashboard.SettingsPage)
	assert.Equal(t, "memory", page.Driver)
	assert.False(t, page.Queued)
	assert.Nil(t, page.LastBackup)
}

func TestInlineBackup(t *testing.T) {
	h := newHarness(t, "admin@example.com", "admin123", nil)
	res := h.do(http.MethodPost, "/dashboard/settings/backup")

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard/settings", res.Header().Get("Location"))
	flashes := h.last.Flashes()
	require.NotEmpty(t, flashes)
	assert.Equal(t, "Backup completed", flashes[len(flashes)-1].Message)
	assert.Equal(t, "11 collections saved", flashes[len(flashes)-1].Description)

	meta, ok, err := jobs.LastBackup(context.Background(), h.storage)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, jobs.ReasonManual, meta.Reason)
	assert.Equal(t, "admin@example.com", meta.RequestedBy)
}

func TestQueuedBackupOutcomes(t *testing.T) {
	cases := []struct {
		name    string
		backups *stubBackups
		kind    string
		message string
	}{
		{"queued", &stubBackups{queued: true}, shared.FlashSuccess, "Backup queued"},
		{"duplicate", &stubBackups{err: jobs.ErrBackupQueued}, shared.FlashInfo, "Backup already queued"},
		{"failure", &stubBackups{err: errors.New("redis down")}, shared.FlashError, "Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, "admin@example.com", "admin123", tc.backups)
			res := h.do(http.MethodPost, "/dashboard/settings/backup")
			require.Equal(t, http.StatusSeeOther, res.Code)

			flashes := h.last.Flashes()
			require.NotEmpty(t, flashes)
			got := flashes[len(flashes)-1]
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.message, got.Message)
			require.Len(t, tc.backups.calls, 1)
			assert.Equal(t, jobs.ReasonManual, tc.backups.calls[0].Reason)
		})
	}
}
