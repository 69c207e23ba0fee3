package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
)

// Backup reasons.
const (
	ReasonScheduled = "scheduled"
	ReasonManual    = "manual"
)

const (
	// BackupPrefix namespaces copied slots, e.g. "backup:adminDashboardUsers".
	BackupPrefix = "backup:"
	// BackupMetaKey holds the BackupMeta of the latest successful run.
	BackupMetaKey = "backup:meta"
)

// BackupMeta summarises the latest backup.
type BackupMeta struct {
	TakenAt     time.Time `json:"takenAt"`
	Reason      string    `json:"reason"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	Slots       int       `json:"slots"`
	Missing     []string  `json:"missing,omitempty"`
}

// BackupJob snapshots record slots into the backup namespace.
type BackupJob struct {
	Storage storage.Storage
	Keys    []string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewBackupJob wires dependencies for the backup handler.
func NewBackupJob(s storage.Storage, keys []string, logger *slog.Logger, metrics *jobmetrics.Metrics) *BackupJob {
	return &BackupJob{
		Storage: s,
		Keys:    keys,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskStorageBackup tasks.
func (j *BackupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("storage backup: handler not configured")
	}
	var payload BackupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Run(ctx, payload)
	return err
}

// Run copies every slot concurrently, then records BackupMeta. Slots that do
// not exist yet are listed as missing rather than failing the run.
func (j *BackupJob) Run(ctx context.Context, payload BackupPayload) (meta BackupMeta, err error) {
	if payload.Reason == "" {
		payload.Reason = ReasonScheduled
	}
	tracker := j.Metrics.Track(TaskStorageBackup)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting storage backup", slog.Int("slots", len(j.Keys)))
	start := j.now()

	var copied atomic.Int64
	missing := make([]bool, len(j.Keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, key := range j.Keys {
		g.Go(func() error {
			raw, err := j.Storage.Get(gctx, key)
			if errors.Is(err, storage.ErrNotFound) {
				missing[i] = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("storage backup: read %s: %w", key, err)
			}
			if err := j.Storage.Set(gctx, BackupPrefix+key, raw); err != nil {
				return fmt.Errorf("storage backup: write %s: %w", key, err)
			}
			copied.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("storage backup failed", slog.Any("error", err))
		return BackupMeta{}, err
	}

	meta = BackupMeta{
		TakenAt:     start,
		Reason:      payload.Reason,
		RequestedBy: payload.RequestedBy,
		Slots:       int(copied.Load()),
	}
	for i, gone := range missing {
		if gone {
			meta.Missing = append(meta.Missing, j.Keys[i])
		}
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return BackupMeta{}, err
	}
	if err := j.Storage.Set(ctx, BackupMetaKey, data); err != nil {
		return BackupMeta{}, fmt.Errorf("storage backup: write meta: %w", err)
	}
	j.Metrics.AddSlots(TaskStorageBackup, meta.Slots)
	logger.Info("completed storage backup", slog.Int("copied", meta.Slots), slog.Int("missing", len(meta.Missing)))
	return meta, nil
}

// Restore copies the backed up slots back over the live ones.
func (j *BackupJob) Restore(ctx context.Context) (int, error) {
	restored := 0
	for _, key := range j.Keys {
		raw, err := j.Storage.Get(ctx, BackupPrefix+key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return restored, fmt.Errorf("storage restore: read %s: %w", key, err)
		}
		if err := j.Storage.Set(ctx, key, raw); err != nil {
			return restored, fmt.Errorf("storage restore: write %s: %w", key, err)
		}
		restored++
	}
	j.logger().Info("restored storage backup", slog.Int("slots", restored))
	return restored, nil
}

// LastBackup reads the latest BackupMeta. ok is false when no backup ran yet.
func LastBackup(ctx context.Context, s storage.Storage) (meta BackupMeta, ok bool, err error) {
	raw, err := s.Get(ctx, BackupMetaKey)
	if errors.Is(err, storage.ErrNotFound) {
		return BackupMeta{}, false, nil
	}
	if err != nil {
		return BackupMeta{}, false, err
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return BackupMeta{}, false, fmt.Errorf("storage backup: decode meta: %w", err)
	}
	return meta, true, nil
}

func (j *BackupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *BackupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// Backup runs the backup in the calling goroutine. It never reports queued.
func (j *BackupJob) Backup(ctx context.Context, payload BackupPayload) (bool, error) {
	_, err := j.Run(ctx, payload)
	return false, err
}
