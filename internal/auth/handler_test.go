package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/auth"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

type recordingRenderer struct {
	name   string
	status int
	data   any
}

func (r *recordingRenderer) Page(w http.ResponseWriter, _ *http.Request, name, title string, data any, status int) {
	r.name, r.status, r.data = name, status, data
	w.WriteHeader(status)
	_, _ = w.Write([]byte("<form>" + title + "</form>"))
}

type harness struct {
	handler  *auth.Handler
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	authn    *auth.Authenticator
	renderer *recordingRenderer
	redis    *miniredis.Miniredis
	cookie   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	h := &harness{
		sessions: shared.NewSessionManager(client, shared.SessionOptions{CookieName: "test_session", Secret: "secret", TTL: time.Hour}),
		csrf:     shared.NewCSRFManager("csrfsecret"),
		authn:    auth.NewAuthenticator(directory, rbac.DefaultPolicy(), nil, nil),
		renderer: &recordingRenderer{},
		redis:    mr,
	}
	h.handler = auth.NewHandler(discardLogger(), h.renderer, h.sessions, h.csrf)
	return h
}

// do runs fn with the same middleware order as the app: HTTP session, then auth session.
func (h *harness) do(t *testing.T, req *http.Request, fn http.HandlerFunc) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	if h.cookie != "" {
		req.AddCookie(&http.Cookie{Name: h.sessions.CookieName(), Value: h.cookie})
	}
	sess, err := h.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	h.authn.Middleware(fn).ServeHTTP(res, req)
	require.NoError(t, h.sessions.Commit(ctx, res, req, sess))
	h.cookie = sess.ID
	return res, sess
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginPage(t *testing.T) {
	h := newHarness(t)
	res, _ := h.do(t, httptest.NewRequest(http.MethodGet, "/login?next=/dashboard/tickets", nil), h.handler.ShowLoginForTest)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "pages/login.html", h.renderer.name)
	data := h.renderer.data.(auth.LoginPageData)
	assert.Len(t, data.Hints, 3)
	assert.Contains(t, res.Body.String(), "<form")
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	res, sess := h.do(t, postForm("/login", url.Values{"email": {"admin@example.com"}, "password": {"nope"}}), h.handler.HandleLoginForTest)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	data := h.renderer.data.(auth.LoginPageData)
	assert.Equal(t, "Invalid email or password", data.Errors["general"])
	assert.Empty(t, data.Form.Password)
	assert.Empty(t, sess.Get(auth.UserKey))
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t)
	res, _ := h.do(t, postForm("/login", url.Values{"email": {"not-an-email"}}), h.handler.HandleLoginForTest)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	data := h.renderer.data.(auth.LoginPageData)
	assert.Equal(t, "must be a valid email address", data.Errors["Email"])
	assert.Equal(t, "is required", data.Errors["Password"])
	assert.NotContains(t, data.Errors, "general")
}

func TestLoginSuccessAndLogout(t *testing.T) {
	h := newHarness(t)

	_, sess := h.do(t, httptest.NewRequest(http.MethodGet, "/login", nil), h.handler.ShowLoginForTest)
	before := sess.Get(shared.CSRFSessionKey)
	anonymousID := sess.ID

	res, sess := h.do(t, postForm("/login", url.Values{
		"email":    {"manager@example.com"},
		"password": {"manager123"},
		"next":     {"/dashboard/users"},
	}), h.handler.HandleLoginForTest)
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard/users", res.Header().Get("Location"))
	assert.Contains(t, sess.Get(auth.UserKey), `"role":"manager"`)
	assert.NotEqual(t, before, sess.Get(shared.CSRFSessionKey))
	assert.NotEqual(t, anonymousID, sess.ID)
	assert.False(t, h.redis.Exists("session:"+anonymousID))
	signedInID := sess.ID
	require.NotEmpty(t, sess.Flashes())
	assert.Equal(t, "Welcome back", sess.Flashes()[0].Message)

	// A fresh request on the same cookie sees the signed in principal.
	res, _ = h.do(t, httptest.NewRequest(http.MethodGet, "/login", nil), h.handler.ShowLoginForTest)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, auth.HomePath, res.Header().Get("Location"))

	router := chi.NewRouter()
	h.handler.MountRoutes(router)
	res, sess = h.do(t, postForm("/logout", nil), router.ServeHTTP)
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login", res.Header().Get("Location"))
	assert.Empty(t, sess.Get(auth.UserKey))
	assert.NotEqual(t, signedInID, sess.ID)
	assert.False(t, h.redis.Exists("session:"+signedInID))
	require.NotEmpty(t, sess.Flashes())
	assert.Equal(t, "Signed out", sess.Flashes()[len(sess.Flashes())-1].Message)

	res, _ = h.do(t, httptest.NewRequest(http.MethodGet, "/login", nil), h.handler.ShowLoginForTest)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	for _, next := range []string{"https://evil.example", "//evil.example", ""} {
		h := newHarness(t)
		res, _ := h.do(t, postForm("/login", url.Values{
			"email":    {"user@example.com"},
			"password": {"user123"},
			"next":     {next},
		}), h.handler.HandleLoginForTest)
		assert.Equal(t, auth.HomePath, res.Header().Get("Location"), next)
	}
}

func TestMiddlewareInstallsAnonymousWithoutHTTPSession(t *testing.T) {
	a := auth.NewAuthenticator(directory, rbac.DefaultPolicy(), nil, nil)
	var seen *auth.Session
	a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.FromContext(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, seen)
	assert.False(t, seen.IsAuthenticated())

	subject := auth.Subject(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, subject.IsAuthenticated())
}
