package settingsstore

import (
	"errors"
	"os"
	"path"
	"strings"

	"github.com/mrlokans/perlego-sync/internal/config"
	"github.com/mrlokans/perlego-sync/internal/crypto"
	"github.com/mrlokans/perlego-sync/internal/database"
	"github.com/mrlokans/perlego-sync/internal/entities"
	"gorm.io/gorm"
)

const (
	SourceDatabase    = "database"
	SourceEnvironment = "environment"
	SourceDefault     = "default"
)

const (
	EnvPerlegoToken  = "PERLEGO_TOKEN"
	EnvPerlegoFolder = "PERLEGO_FOLDER"
	EnvSyncEnabled   = "PERLEGO_SYNC_ENABLED"
	EnvSyncSchedule  = "PERLEGO_SYNC_SCHEDULE"
)

var ErrInvalidFolder = errors.New("folder must be a relative path inside the vault")

// Priority: database > environment > default
type SettingsStore struct {
	db     *database.Database
	cipher *crypto.TokenCipher
}

// New creates a settings store. cipher seals the Perlego token; with a nil
// cipher the token can only come from the environment.
func New(db *database.Database, cipher *crypto.TokenCipher) *SettingsStore {
	return &SettingsStore{db: db, cipher: cipher}
}

// lookup resolves a setting and reports where the value came from.
func (s *SettingsStore) lookup(key, env, fallback string) (string, string) {
	setting, err := s.db.GetSetting(key)
	if err == nil && setting.Value != "" {
		return setting.Value, SourceDatabase
	}
	if envVal := os.Getenv(env); envVal != "" {
		return envVal, SourceEnvironment
	}
	return fallback, SourceDefault
}

func (s *SettingsStore) deleteSetting(key string) error {
	err := s.db.DeleteSetting(key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// GetFolder returns the vault folder documents are written into.
func (s *SettingsStore) GetFolder() string {
	folder, _ := s.lookup(entities.SettingKeyPerlegoFolder, EnvPerlegoFolder, config.DefaultFolder)
	return folder
}

func (s *SettingsStore) GetFolderSource() string {
	_, source := s.lookup(entities.SettingKeyPerlegoFolder, EnvPerlegoFolder, config.DefaultFolder)
	return source
}

// SetFolder validates and stores the folder. Nested folders are allowed.
func (s *SettingsStore) SetFolder(folder string) error {
	cleaned, err := ValidateFolder(folder)
	if err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeyPerlegoFolder, cleaned)
}

func (s *SettingsStore) ClearFolder() error {
	return s.deleteSetting(entities.SettingKeyPerlegoFolder)
}

// ValidateFolder normalizes a vault-relative folder path.
func ValidateFolder(folder string) (string, error) {
	folder = strings.TrimSpace(strings.ReplaceAll(folder, "\\", "/"))
	if folder == "" || strings.HasPrefix(folder, "/") {
		return "", ErrInvalidFolder
	}
	cleaned := path.Clean(folder)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidFolder
	}
	return cleaned, nil
}
