package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, SessionOptions{CookieName: "test_session", Secret: "secret", TTL: time.Hour}), mr
}

func roundTrip(t *testing.T, sm *SessionManager, cookie *http.Cookie, mutate func(*Session)) (*Session, *http.Cookie) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	if mutate != nil {
		mutate(sess)
	}
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rr, req, sess))
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return sess, cookies[0]
}

func TestSessionPersistsValuesAcrossRequests(t *testing.T) {
	sm, mr := newManager(t)

	first, cookie := roundTrip(t, sm, nil, func(s *Session) {
		s.Set("adminDashboardUser", `{"id":"1"}`)
	})
	assert.Equal(t, "test_session", cookie.Name)
	assert.Equal(t, first.ID, cookie.Value)
	assert.True(t, mr.Exists("session:"+first.ID))

	second, _ := roundTrip(t, sm, cookie, nil)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, `{"id":"1"}`, second.Get("adminDashboardUser"))
}

func TestSessionFlashSurvivesRedirectOnce(t *testing.T) {
	sm, _ := newManager(t)

	_, cookie := roundTrip(t, sm, nil, func(s *Session) {
		s.AddFlash(FlashMessage{Kind: FlashError, Message: "Permission denied", Description: "You don't have permission to create users"})
	})

	var popped *FlashMessage
	roundTrip(t, sm, cookie, func(s *Session) {
		popped = s.PopFlash()
	})
	require.NotNil(t, popped)
	assert.Equal(t, "Permission denied", popped.Message)
	assert.Equal(t, FlashError, popped.Kind)

	third, _ := roundTrip(t, sm, cookie, nil)
	assert.Nil(t, third.PopFlash())
}

func TestSessionDestroyClearsCookieAndPayload(t *testing.T) {
	sm, mr := newManager(t)
	sess, cookie := roundTrip(t, sm, nil, func(s *Session) { s.Set("k", "v") })

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sm.Destroy(loaded)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rr, req, loaded))

	assert.False(t, mr.Exists("session:"+sess.ID))
	cleared := rr.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestSessionRenewMovesPayloadToNewID(t *testing.T) {
	sm, mr := newManager(t)
	first, cookie := roundTrip(t, sm, nil, func(s *Session) { s.Set("k", "v") })
	oldID := first.ID

	renewed, next := roundTrip(t, sm, cookie, func(s *Session) { sm.Renew(s) })
	assert.NotEqual(t, oldID, renewed.ID)
	assert.Equal(t, renewed.ID, next.Value)
	assert.False(t, mr.Exists("session:"+oldID))
	assert.True(t, mr.Exists("session:"+renewed.ID))

	again, _ := roundTrip(t, sm, next, nil)
	assert.Equal(t, "v", again.Get("k"))

	stale, _ := roundTrip(t, sm, cookie, nil)
	assert.NotEqual(t, oldID, stale.ID)
	assert.Empty(t, stale.Get("k"))
}

func TestSessionClearKeepsFlashes(t *testing.T) {
	sm, _ := newManager(t)
	_, cookie := roundTrip(t, sm, nil, func(s *Session) {
		s.Set("k", "v")
		s.Clear()
		s.AddFlash(FlashMessage{Kind: FlashSuccess, Message: "Signed out"})
	})
	sess, _ := roundTrip(t, sm, cookie, nil)
	assert.Empty(t, sess.Get("k"))
	require.Len(t, sess.Flashes(), 1)
	assert.Equal(t, "Signed out", sess.Flashes()[0].Message)
}

func TestSessionUnknownCookieStartsFresh(t *testing.T) {
	sm, _ := newManager(t)
	sess, _ := roundTrip(t, sm, &http.Cookie{Name: "test_session", Value: "stale"}, nil)
	assert.NotEqual(t, "stale", sess.ID)
	assert.Empty(t, sess.Get("anything"))
}

func TestCSRFTokenLifecycle(t *testing.T) {
	sm, _ := newManager(t)
	csrf := NewCSRFManager("csrfsecret")
	sess, _ := roundTrip(t, sm, nil, nil)
	ctx := context.Background()

	require.ErrorIs(t, csrf.VerifyToken(ctx, sess, "anything"), ErrCSRFTokenMissing)

	token, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, csrf.VerifyToken(ctx, sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)

	rotated, err := csrf.RotateToken(ctx, sess)
	require.NoError(t, err)
	assert.NotEqual(t, token, rotated)
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, token), ErrCSRFTokenMismatch)
}

func TestNotifyWithoutSessionIsNoop(t *testing.T) {
	Notify(context.Background(), FlashSuccess, "ignored", "")

	sess := &Session{}
	ctx := ContextWithSession(context.Background(), sess)
	Notify(ctx, FlashSuccess, "Saved", "Ticket created")
	require.Len(t, sess.Flashes(), 1)
	assert.Equal(t, "Ticket created", sess.Flashes()[0].Description)
}

func TestUserSafeMessage(t *testing.T) {
	assert.Equal(t, "", UserSafeMessage(nil))
	assert.Equal(t, "Cannot delete system roles", UserSafeMessage(fmt.Errorf("delete: %w", Safe("Cannot delete system roles", errors.New("protected")))))
	assert.Equal(t, "The requested record does not exist", UserSafeMessage(fmt.Errorf("lookup: %w", ErrNotFound)))
	assert.Equal(t, "Something went wrong, please try again", UserSafeMessage(errors.New("dial tcp: refused")))
}
