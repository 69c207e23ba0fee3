package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/storage"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

func TestBackupStatusRestoreWithoutQueue(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()
	require.NoError(t, s.Set(ctx, "slot", []byte(`["v1"]`)))

	c, err := NewJobsCLI("", s, jobs.NewBackupJob(s, []string{"slot", "other"}, nil, nil))
	require.NoError(t, err)
	defer c.Close()

	var out bytes.Buffer
	require.NoError(t, c.Status(ctx, &out))
	assert.Equal(t, "last backup: never\n", out.String())

	queued, err := c.Backup(ctx, "ops")
	require.NoError(t, err)
	assert.False(t, queued)

	out.Reset()
	require.NoError(t, c.Status(ctx, &out))
	assert.Contains(t, out.String(), "(manual, 1 slots)")
	assert.Contains(t, out.String(), "missing: other")

	require.NoError(t, s.Set(ctx, "slot", []byte(`["v2"]`)))
	n, err := c.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	raw, err := s.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, `["v1"]`, string(raw))
}

func TestInspectQueueWithoutInspector(t *testing.T) {
	c, err := NewJobsCLI("", storage.NewMemory(), nil)
	require.NoError(t, err)
	_, err = c.InspectQueue(context.Background())
	assert.Error(t, err)
	_, err = c.Restore(context.Background())
	assert.Error(t, err)
}
