package settingsstore

import (
	"strconv"
	"time"

	"github.com/mrlokans/perlego-sync/internal/config"
	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/robfig/cron/v3"
)

const (
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncConfig is the effective configuration of the periodic import.
type SyncConfig struct {
	Enabled  bool   `json:"enabled"`
	Token    string `json:"-"`
	Folder   string `json:"folder"`
	Schedule string `json:"schedule"`
}

// SyncConfigInfo includes source information for each field
type SyncConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	Token       string `json:"token"` // Masked for display
	TokenSource string `json:"token_source"`
	HasToken    bool   `json:"has_token"`

	Folder       string `json:"folder"`
	FolderSource string `json:"folder_source"`

	Schedule            string `json:"schedule"`
	ScheduleSource      string `json:"schedule_source"`
	ScheduleDescription string `json:"schedule_description"`
}

// SyncStatus is the outcome of the last import
type SyncStatus struct {
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	Status     string     `json:"status,omitempty"` // "success", "failed", "running", ""
	Message    string     `json:"message,omitempty"`
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// GetSyncEnabled returns whether periodic import is enabled (database > env > default)
func (s *SettingsStore) GetSyncEnabled() bool {
	v, _ := s.lookup(entities.SettingKeySyncEnabled, EnvSyncEnabled, "false")
	return parseBool(v)
}

func (s *SettingsStore) GetSyncEnabledSource() string {
	_, source := s.lookup(entities.SettingKeySyncEnabled, EnvSyncEnabled, "false")
	return source
}

func (s *SettingsStore) SetSyncEnabled(enabled bool) error {
	return s.db.SetSetting(entities.SettingKeySyncEnabled, strconv.FormatBool(enabled))
}

// GetSyncSchedule returns the cron schedule (database > env > every 6 hours)
func (s *SettingsStore) GetSyncSchedule() string {
	v, _ := s.lookup(entities.SettingKeySyncSchedule, EnvSyncSchedule, config.DefaultSyncSchedule)
	return v
}

func (s *SettingsStore) GetSyncScheduleSource() string {
	_, source := s.lookup(entities.SettingKeySyncSchedule, EnvSyncSchedule, config.DefaultSyncSchedule)
	return source
}

// SetSyncSchedule validates and stores the schedule.
func (s *SettingsStore) SetSyncSchedule(schedule string) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeySyncSchedule, schedule)
}

// GetSyncConfig returns the effective configuration. A token that cannot be
// read is reported as missing.
func (s *SettingsStore) GetSyncConfig() SyncConfig {
	token, _ := s.GetToken()
	return SyncConfig{
		Enabled:  s.GetSyncEnabled(),
		Token:    token,
		Folder:   s.GetFolder(),
		Schedule: s.GetSyncSchedule(),
	}
}

// GetSyncConfigInfo returns the configuration with source information
func (s *SettingsStore) GetSyncConfigInfo() SyncConfigInfo {
	token, _ := s.GetToken()
	schedule := s.GetSyncSchedule()

	return SyncConfigInfo{
		Enabled:             s.GetSyncEnabled(),
		EnabledSource:       s.GetSyncEnabledSource(),
		Token:               maskToken(token),
		TokenSource:         s.GetTokenSource(),
		HasToken:            token != "",
		Folder:              s.GetFolder(),
		FolderSource:        s.GetFolderSource(),
		Schedule:            schedule,
		ScheduleSource:      s.GetSyncScheduleSource(),
		ScheduleDescription: GetCronDescription(schedule),
	}
}

// GetSyncStatus returns the last import status
func (s *SettingsStore) GetSyncStatus() SyncStatus {
	status := SyncStatus{}

	if setting, err := s.db.GetSetting(entities.SettingKeySyncLastAt); err == nil && setting.Value != "" {
		if ts, err := time.Parse(time.RFC3339, setting.Value); err == nil {
			status.LastSyncAt = &ts
		}
	}
	if setting, err := s.db.GetSetting(entities.SettingKeySyncLastStatus); err == nil {
		status.Status = setting.Value
	}
	if setting, err := s.db.GetSetting(entities.SettingKeySyncLastMessage); err == nil {
		status.Message = setting.Value
	}

	return status
}

// SetSyncStatus updates the import status
func (s *SettingsStore) SetSyncStatus(status, message string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.db.SetSetting(entities.SettingKeySyncLastAt, now); err != nil {
		return err
	}
	if err := s.db.SetSetting(entities.SettingKeySyncLastStatus, status); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeySyncLastMessage, message)
}

// ClearSyncSettings clears all database overrides, reverting to env/default.
// The stored token is kept.
func (s *SettingsStore) ClearSyncSettings() error {
	keys := []string{
		entities.SettingKeySyncEnabled,
		entities.SettingKeySyncSchedule,
		entities.SettingKeyPerlegoFolder,
	}
	for _, key := range keys {
		if err := s.deleteSetting(key); err != nil {
			return err
		}
	}
	return nil
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "0 */3 * * *":
		return "Every 3 hours"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 */12 * * *":
		return "Every 12 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next import will run based on the schedule
func GetNextRunTime(schedule string) (*time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
