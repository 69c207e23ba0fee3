package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-admin/internal/storage"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

// JobsCLI wraps manual backup helpers for operators.
type JobsCLI struct {
	client    *jobs.Client
	inspector *asynq.Inspector
	job       *jobs.BackupJob
	storage   storage.Storage
}

// NewJobsCLI initialises the helpers. redisAddr may be empty, in which case
// backups run inline and queue stats are unavailable.
func NewJobsCLI(redisAddr string, s storage.Storage, job *jobs.BackupJob) (*JobsCLI, error) {
	c := &JobsCLI{job: job, storage: s}
	if redisAddr == "" {
		return c, nil
	}
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client, err := jobs.NewClient(opts)
	if err != nil {
		return nil, err
	}
	c.client = client
	c.inspector = asynq.NewInspector(opts)
	return c, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// Backup queues a manual backup, or runs it in place without a queue.
func (c *JobsCLI) Backup(ctx context.Context, requestedBy string) (queued bool, err error) {
	payload := jobs.BackupPayload{Reason: jobs.ReasonManual, RequestedBy: requestedBy}
	if c.client != nil {
		return c.client.Backup(ctx, payload)
	}
	if c.job == nil {
		return false, errors.New("jobs cli: backup job not configured")
	}
	return c.job.Backup(ctx, payload)
}

// Restore copies the latest backup over the live slots.
func (c *JobsCLI) Restore(ctx context.Context) (int, error) {
	if c.job == nil {
		return 0, errors.New("jobs cli: backup job not configured")
	}
	return c.job.Restore(ctx)
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// Status prints the latest backup and, when available, the queue state.
func (c *JobsCLI) Status(ctx context.Context, w io.Writer) error {
	meta, ok, err := jobs.LastBackup(ctx, c.storage)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(w, "last backup: %s (%s, %d slots)\n", meta.TakenAt.Format(time.RFC3339), meta.Reason, meta.Slots)
		for _, key := range meta.Missing {
			fmt.Fprintf(w, "  missing: %s\n", key)
		}
	} else {
		fmt.Fprintln(w, "last backup: never")
	}
	if c.inspector == nil {
		return nil
	}
	stats, err := c.InspectQueue(ctx)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		fmt.Fprintf(w, "queue %s: empty\n", jobs.QueueDefault)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "queue %s: pending=%d active=%d scheduled=%d retry=%d\n",
		stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	return nil
}
