package e2e

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
)

// switchableStorage fails writes once broken is set.
type switchableStorage struct {
	storage.Storage
	broken atomic.Bool
}

func (s *switchableStorage) Set(ctx context.Context, key string, value []byte) error {
	if s.broken.Load() {
		return errors.New("disk full")
	}
	return s.Storage.Set(ctx, key, value)
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	csrf    string
}

var csrfMeta = regexp.MustCompile(`<meta name="csrf-token" content="([^"]*)">`)

func start(t *testing.T) (*app.App, *switchableStorage) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	s := &switchableStorage{Storage: storage.NewMemory()}
	dash, err := app.Wire(context.Background(), app.WireParams{
		Config: &app.Config{
			AppEnv:             "test",
			AppRequestTimeout:  5 * time.Second,
			StorageDriver:      app.DriverMemory,
			SessionSecret:      "s",
			SessionTTL:         time.Hour,
			CSRFSecret:         "c",
			RateLimitPerMinute: 1000,
			PageSize:           10,
		},
		Logger:  slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Redis:   rc,
		Storage: s,
	})
	require.NoError(t, err)
	return dash, s
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	res := httptest.NewRecorder()
	c.handler.ServeHTTP(res, req)
	for _, ck := range res.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	if m := csrfMeta.FindStringSubmatch(res.Body.String()); m != nil && m[1] != "" {
		c.csrf = m[1]
	}
	return res
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", c.csrf)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) login(email, password string) {
	c.t.Helper()
	c.get("/login")
	res := c.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(c.t, http.StatusSeeOther, res.Code)
}
