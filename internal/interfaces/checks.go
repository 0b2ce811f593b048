package interfaces

// Compile-time checks that concrete types satisfy the interfaces their
// consumers declare.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/perlego-sync/internal/audit"
	"github.com/mrlokans/perlego-sync/internal/database"
	"github.com/mrlokans/perlego-sync/internal/database/runs"
	"github.com/mrlokans/perlego-sync/internal/http"
	"github.com/mrlokans/perlego-sync/internal/importers"
	"github.com/mrlokans/perlego-sync/internal/notify"
	"github.com/mrlokans/perlego-sync/internal/perlego"
	"github.com/mrlokans/perlego-sync/internal/scheduler"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
	"github.com/mrlokans/perlego-sync/internal/storage"
	"github.com/mrlokans/perlego-sync/internal/tasks"
)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ importers.BookSource = (*perlego.Client)(nil)
var _ importers.RunRecorder = (*runs.Repository)(nil)
var _ importers.ImportAuditor = (*audit.Service)(nil)

var _ storage.DocumentStore = (*storage.Vault)(nil)
var _ storage.DocumentStore = (*storage.Memory)(nil)

// =============================================================================
// Notices
// =============================================================================

var _ notify.Reporter = notify.Logger{}
var _ notify.Reporter = notify.Multi{}
var _ notify.Reporter = (*notify.Status)(nil)
var _ notify.Reporter = (*notify.Audit)(nil)
var _ notify.NoticeLogger = (*audit.Service)(nil)

// =============================================================================
// Scheduling and Background Tasks
// =============================================================================

var _ scheduler.Runner = (*importers.Importer)(nil)
var _ scheduler.SyncSettings = (*settingsstore.SettingsStore)(nil)
var _ tasks.Syncer = (*scheduler.PerlegoSyncScheduler)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// HTTP
// =============================================================================

var _ http.Pinger = (*database.Database)(nil)
var _ http.SettingsStore = (*settingsstore.SettingsStore)(nil)
var _ http.SyncScheduler = (*scheduler.PerlegoSyncScheduler)(nil)
var _ http.ImportQueue = (*tasks.Client)(nil)
var _ http.RunStore = (*runs.Repository)(nil)
var _ http.AuditLog = (*audit.Service)(nil)
