package http

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/perlego-sync/internal/settingsstore"
)

type SettingsController struct {
	store     SettingsStore
	scheduler SyncScheduler
	audit     AuditLog
}

func NewSettingsController(store SettingsStore, scheduler SyncScheduler, audit AuditLog) *SettingsController {
	return &SettingsController{store: store, scheduler: scheduler, audit: audit}
}

// SchedulePreset is a suggested cron schedule
type SchedulePreset struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

var schedulePresets = []SchedulePreset{
	{Label: "Every hour", Value: "0 * * * *", Description: "Runs at the top of every hour"},
	{Label: "Every 3 hours", Value: "0 */3 * * *", Description: "Runs every third hour"},
	{Label: "Every 6 hours", Value: "0 */6 * * *", Description: "Runs at midnight, 6am, noon, 6pm"},
	{Label: "Every 12 hours", Value: "0 */12 * * *", Description: "Runs at midnight and noon"},
	{Label: "Daily at midnight", Value: "0 0 * * *", Description: "Runs once daily at 00:00"},
}

type SettingsResponse struct {
	Config    settingsstore.SyncConfigInfo `json:"config"`
	Status    settingsstore.SyncStatus     `json:"status"`
	NextRun   *time.Time                   `json:"next_run,omitempty"`
	IsRunning bool                         `json:"is_running"`
	IsSyncing bool                         `json:"is_syncing"`
	Presets   []SchedulePreset             `json:"presets"`
}

// UpdateSettingsRequest is the body of PUT /api/settings. Omitted fields
// are left unchanged; an empty token clears the stored one.
type UpdateSettingsRequest struct {
	Token    *string `json:"token"`
	Folder   *string `json:"folder"`
	Enabled  *bool   `json:"enabled"`
	Schedule *string `json:"schedule"`
}

// GetSettings handles GET /api/settings
func (sc *SettingsController) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, sc.response())
}

func (sc *SettingsController) response() SettingsResponse {
	response := SettingsResponse{
		Config:  sc.store.GetSyncConfigInfo(),
		Status:  sc.store.GetSyncStatus(),
		Presets: schedulePresets,
	}
	if sc.scheduler != nil {
		response.NextRun = sc.scheduler.GetNextRunTime()
		response.IsRunning = sc.scheduler.IsRunning()
		response.IsSyncing = sc.scheduler.IsSyncing()
	}
	return response
}

// UpdateSettings handles PUT /api/settings
func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	// Validate everything before saving anything.
	if req.Schedule != nil {
		if err := settingsstore.ValidateCronSchedule(*req.Schedule); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_schedule", "invalid cron schedule: "+err.Error())
			return
		}
	}
	if req.Folder != nil {
		if _, err := settingsstore.ValidateFolder(*req.Folder); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_folder", err.Error())
			return
		}
	}

	var changed []string

	if req.Token != nil {
		var err error
		if strings.TrimSpace(*req.Token) == "" {
			err = sc.store.ClearToken()
		} else {
			err = sc.store.SetToken(*req.Token)
		}
		if errors.Is(err, settingsstore.ErrNoCipher) {
			respondError(c, http.StatusConflict, "encryption_unavailable", err.Error())
			return
		}
		if err != nil {
			respondInternalError(c, err, "save token")
			return
		}
		changed = append(changed, "token")
	}
	if req.Folder != nil {
		if err := sc.store.SetFolder(*req.Folder); err != nil {
			respondInternalError(c, err, "save folder")
			return
		}
		changed = append(changed, "folder")
	}
	if req.Schedule != nil {
		if err := sc.store.SetSyncSchedule(*req.Schedule); err != nil {
			respondInternalError(c, err, "save schedule")
			return
		}
		changed = append(changed, "schedule")
	}
	if req.Enabled != nil {
		if err := sc.store.SetSyncEnabled(*req.Enabled); err != nil {
			respondInternalError(c, err, "save enabled")
			return
		}
		changed = append(changed, "enabled")
	}

	if len(changed) > 0 {
		sc.applied("settings_updated", "Updated "+strings.Join(changed, ", "))
	}

	c.JSON(http.StatusOK, sc.response())
}

// ResetSettings handles DELETE /api/settings. The stored token is kept.
func (sc *SettingsController) ResetSettings(c *gin.Context) {
	if err := sc.store.ClearSyncSettings(); err != nil {
		respondInternalError(c, err, "reset settings")
		return
	}
	sc.applied("settings_reset", "Reverted folder and schedule to environment defaults")
	c.JSON(http.StatusOK, sc.response())
}

func (sc *SettingsController) applied(action, description string) {
	if sc.audit != nil {
		sc.audit.LogSettings(action, description)
	}
	if sc.scheduler != nil {
		if err := sc.scheduler.Reschedule(); err != nil {
			log.Printf("Perlego sync scheduler: reschedule failed: %v", err)
		}
	}
}
