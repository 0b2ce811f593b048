package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/notify"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
)

// Pinger checks storage connectivity. database.Database implements it.
type Pinger interface {
	Ping() error
}

// SettingsStore is the settings surface exposed over HTTP.
type SettingsStore interface {
	GetSyncConfigInfo() settingsstore.SyncConfigInfo
	GetSyncStatus() settingsstore.SyncStatus
	SetToken(token string) error
	ClearToken() error
	SetFolder(folder string) error
	SetSyncEnabled(enabled bool) error
	SetSyncSchedule(schedule string) error
	ClearSyncSettings() error
}

// SyncScheduler controls the periodic import.
type SyncScheduler interface {
	Reschedule() error
	RunNow(trigger entities.ImportTrigger)
	IsRunning() bool
	IsSyncing() bool
	GetNextRunTime() *time.Time
}

// ImportQueue enqueues import tasks. tasks.Client implements it.
type ImportQueue interface {
	EnqueueImport(trigger entities.ImportTrigger) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// RunStore reads import run history. runs.Repository implements it.
type RunStore interface {
	ListRuns(limit int) ([]entities.ImportRun, error)
	GetRun(runID string) (*entities.ImportRun, error)
}

// AuditLog reads and writes audit events. audit.Service implements it.
type AuditLog interface {
	GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	LogSettings(action, description string)
}

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies disable their routes when nil.
type RouterConfig struct {
	Database  Pinger
	Settings  SettingsStore
	Scheduler SyncScheduler
	Runs      RunStore
	Audit     AuditLog

	// Status feeds the status-line endpoint
	Status *notify.Status

	// Task queue (optional). Without it imports run in the background
	// through the scheduler.
	TaskQueue ImportQueue

	Version string
}
