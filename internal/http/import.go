package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/notify"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
)

// ImportController exposes the manual import trigger, the status line and
// run history.
type ImportController struct {
	settings  SettingsStore
	scheduler SyncScheduler
	queue     ImportQueue
	runs      RunStore
	status    *notify.Status
}

func NewImportController(settings SettingsStore, scheduler SyncScheduler, queue ImportQueue, runs RunStore, status *notify.Status) *ImportController {
	return &ImportController{
		settings:  settings,
		scheduler: scheduler,
		queue:     queue,
		runs:      runs,
		status:    status,
	}
}

type ImportStartedResponse struct {
	TaskID string `json:"task_id,omitempty"`
}

// StartImport handles POST /api/import
func (ic *ImportController) StartImport(c *gin.Context) {
	if !ic.settings.GetSyncConfigInfo().HasToken {
		respondError(c, http.StatusBadRequest, "missing_token", "Perlego token is not configured")
		return
	}
	if ic.scheduler != nil && ic.scheduler.IsSyncing() {
		respondError(c, http.StatusConflict, "import_in_progress", "an import is already running")
		return
	}

	if ic.queue != nil {
		taskID, err := ic.queue.EnqueueImport(entities.ImportTriggerHTTP)
		if err != nil {
			respondInternalError(c, err, "enqueue import")
			return
		}
		respondAccepted(c, "import enqueued", ImportStartedResponse{TaskID: taskID})
		return
	}

	if ic.scheduler == nil {
		respondError(c, http.StatusServiceUnavailable, "import_unavailable", "no import runner configured")
		return
	}
	ic.scheduler.RunNow(entities.ImportTriggerHTTP)
	respondAccepted(c, "import started", nil)
}

// ImportStatusResponse is the status-line view of the importer.
type ImportStatusResponse struct {
	Notice     *notify.StatusNotice     `json:"notice,omitempty"`
	LastNotice *notify.StatusNotice     `json:"last_notice,omitempty"`
	Syncing    bool                     `json:"syncing"`
	Scheduled  bool                     `json:"scheduled"`
	NextRun    *time.Time               `json:"next_run,omitempty"`
	LastSync   settingsstore.SyncStatus `json:"last_sync"`
	LatestRun  *entities.ImportRun      `json:"latest_run,omitempty"`
}

// GetStatus handles GET /api/import/status
func (ic *ImportController) GetStatus(c *gin.Context) {
	response := ImportStatusResponse{
		LastSync: ic.settings.GetSyncStatus(),
	}
	if ic.status != nil {
		response.Notice = ic.status.Current()
		response.LastNotice = ic.status.Last()
	}
	if ic.scheduler != nil {
		response.Syncing = ic.scheduler.IsSyncing()
		response.Scheduled = ic.scheduler.IsRunning()
		response.NextRun = ic.scheduler.GetNextRunTime()
	}
	if ic.runs != nil {
		latest, err := ic.runs.ListRuns(1)
		if err != nil {
			respondInternalError(c, err, "latest run")
			return
		}
		if len(latest) > 0 {
			response.LatestRun = &latest[0]
		}
	}

	c.JSON(http.StatusOK, response)
}

// ListRuns handles GET /api/import/runs
func (ic *ImportController) ListRuns(c *gin.Context) {
	limit := parseLimit(c, 20, 100)

	runs, err := ic.runs.ListRuns(limit)
	if err != nil {
		respondInternalError(c, err, "list runs")
		return
	}
	if runs == nil {
		runs = []entities.ImportRun{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun handles GET /api/import/runs/:id
func (ic *ImportController) GetRun(c *gin.Context) {
	run, err := ic.runs.GetRun(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "run")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get run")
		return
	}

	c.JSON(http.StatusOK, run)
}
