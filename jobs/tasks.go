package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStorageBackup copies every record slot under the backup prefix.
	TaskStorageBackup = "storage:backup"
)

// BackupPayload describes one backup run.
type BackupPayload struct {
	// Reason is "scheduled" or "manual".
	Reason string `json:"reason"`
	// RequestedBy is the email of the user who asked for a manual run.
	RequestedBy string `json:"requestedBy,omitempty"`
}

// NewBackupTask constructs an Asynq task. Concurrent duplicates are collapsed
// for a minute.
func NewBackupTask(payload BackupPayload) (*asynq.Task, error) {
	if payload.Reason == "" {
		payload.Reason = ReasonScheduled
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStorageBackup, data, asynq.Queue(QueueDefault), asynq.Unique(time.Minute)), nil
}
