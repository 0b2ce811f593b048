package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingKeyPerlegoToken    = "perlego_token" // encrypted
	SettingKeyPerlegoFolder   = "perlego_folder"
	SettingKeySyncEnabled     = "perlego_sync_enabled"
	SettingKeySyncSchedule    = "perlego_sync_schedule"
	SettingKeySyncLastAt      = "perlego_sync_last_at"
	SettingKeySyncLastStatus  = "perlego_sync_last_status"
	SettingKeySyncLastMessage = "perlego_sync_last_message"
	SettingKeyTokenSalt       = "token_salt" // argon2 salt for TOKEN_PASSPHRASE
)
