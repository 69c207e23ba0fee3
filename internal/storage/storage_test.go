package storage

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "adminDashboardUsers")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "adminDashboardUsers", []byte(`[{"id":"1"}]`)))
	require.NoError(t, s.Set(ctx, "adminDashboardRoles", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "backup:meta", []byte(`{}`)))

	got, err := s.Get(ctx, "adminDashboardUsers")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, s.Set(ctx, "adminDashboardUsers", []byte(`[]`)))
	got, err = s.Get(ctx, "adminDashboardUsers")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	keys, err := s.Keys(ctx, "adminDashboard")
	require.NoError(t, err)
	assert.Equal(t, []string{"adminDashboardRoles", "adminDashboardUsers"}, keys)

	require.NoError(t, s.Delete(ctx, "adminDashboardUsers"))
	require.NoError(t, s.Delete(ctx, "adminDashboardUsers"))
	_, err = s.Get(ctx, "adminDashboardUsers")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'z'
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedis(client, "admin:")
	exerciseStorage(t, s)

	require.NoError(t, s.Set(context.Background(), "adminDashboardKPIs", []byte("[]")))
	assert.True(t, mr.Exists("admin:adminDashboardKPIs"))
}

func TestDialFailsWithoutServer(t *testing.T) {
	_, err := Dial(context.Background(), "127.0.0.1:1")
	require.Error(t, err)
}

func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if strings.TrimSpace(dsn) == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPostgres(pool)
	require.NoError(t, s.EnsureSchema(ctx))
	_, err = pool.Exec(ctx, `DELETE FROM kv_slots WHERE key LIKE 'adminDashboard%' OR key = 'backup:meta'`)
	require.NoError(t, err)

	exerciseStorage(t, s)
}
