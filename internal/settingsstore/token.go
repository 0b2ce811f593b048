package settingsstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/perlego-sync/internal/config"
	"github.com/mrlokans/perlego-sync/internal/crypto"
	"github.com/mrlokans/perlego-sync/internal/database"
	"github.com/mrlokans/perlego-sync/internal/entities"
)

// DefaultKeyFileName is the key file created in the home directory when no
// key or passphrase is configured.
const DefaultKeyFileName = ".perlego-sync-token-key"

var (
	ErrEmptyToken      = errors.New("token is empty")
	ErrNoCipher        = errors.New("token encryption is not configured")
	ErrTokenUnreadable = errors.New("stored token cannot be decrypted, set it again")
)

// GetToken returns the Perlego bearer token (database > env > "").
func (s *SettingsStore) GetToken() (string, error) {
	setting, err := s.db.GetSetting(entities.SettingKeyPerlegoToken)
	if err == nil && setting.Value != "" {
		if s.cipher == nil {
			return "", ErrNoCipher
		}
		token, err := s.cipher.Decrypt(setting.Value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrTokenUnreadable, err)
		}
		return token, nil
	}
	return os.Getenv(EnvPerlegoToken), nil
}

func (s *SettingsStore) GetTokenSource() string {
	if setting, err := s.db.GetSetting(entities.SettingKeyPerlegoToken); err == nil && setting.Value != "" {
		return SourceDatabase
	}
	if os.Getenv(EnvPerlegoToken) != "" {
		return SourceEnvironment
	}
	return SourceDefault
}

// HasToken reports whether a usable token is configured from any source.
func (s *SettingsStore) HasToken() bool {
	token, err := s.GetToken()
	return err == nil && token != ""
}

// SetToken encrypts and stores the token.
func (s *SettingsStore) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if s.cipher == nil {
		return ErrNoCipher
	}
	sealed, err := s.cipher.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	return s.db.SetSetting(entities.SettingKeyPerlegoToken, sealed)
}

func (s *SettingsStore) ClearToken() error {
	return s.deleteSetting(entities.SettingKeyPerlegoToken)
}

// maskToken returns a masked version of the token for display
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}

// ResolveCipher builds the token cipher from the first available source:
// an explicit key, a passphrase (salted per database), or a key file that is
// generated on first use.
func ResolveCipher(db *database.Database, cfg config.Security) (*crypto.TokenCipher, error) {
	if cfg.TokenEncryptionKey != "" {
		return crypto.NewTokenCipherFromBase64(cfg.TokenEncryptionKey)
	}

	if cfg.TokenPassphrase != "" {
		salt, err := loadOrCreateSalt(db)
		if err != nil {
			return nil, err
		}
		return crypto.NewTokenCipherFromPassphrase(cfg.TokenPassphrase, salt)
	}

	key, err := loadOrCreateKeyFile(cfg.KeyFilePath)
	if err != nil {
		return nil, err
	}
	return crypto.NewTokenCipherFromBase64(key)
}

func loadOrCreateSalt(db *database.Database) ([]byte, error) {
	if setting, err := db.GetSetting(entities.SettingKeyTokenSalt); err == nil && setting.Value != "" {
		salt, err := base64.StdEncoding.DecodeString(setting.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decode token salt: %w", err)
		}
		return salt, nil
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := db.SetSetting(entities.SettingKeyTokenSalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("failed to save token salt: %w", err)
	}
	return salt, nil
}

func loadOrCreateKeyFile(keyFilePath string) (string, error) {
	if keyFilePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		keyFilePath = filepath.Join(homeDir, DefaultKeyFileName)
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		return strings.TrimSpace(string(data)), nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(key), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}

	log.Printf("Generated new token encryption key at %s", keyFilePath)
	return key, nil
}
