package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Perlego
		Vault
		PerlegoSync
		Audit
		Global
		Database
		Tasks
		Security
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Perlego struct {
		APIURL      string
		Token       string
		Folder      string
		HTTPTimeout time.Duration // 0 means no client timeout
	}
	Vault struct {
		Dir string // Root of the Obsidian vault
	}
	PerlegoSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		TaskTimeout     time.Duration
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Security struct {
		TokenEncryptionKey string // base64 encoded 32 byte key
		TokenPassphrase    string // used when no key is given, stretched with argon2
		KeyFilePath        string
	}
	Log struct {
		Verbose bool
	}
)

// getVaultDir returns the vault directory, checking both new and legacy env vars
func getVaultDir(v *viper.Viper) string {
	if dir := v.GetString("VAULT_DIR"); dir != "" {
		return dir
	}
	return v.GetString("OBSIDIAN_VAULT_DIR")
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("perlego_api_url", DefaultAPIURL)
	v.SetDefault("perlego_folder", DefaultFolder)
	v.SetDefault("perlego_http_timeout", "0s")
	v.SetDefault("vault_dir", "")
	v.SetDefault("perlego_sync_enabled", false)
	v.SetDefault("perlego_sync_schedule", DefaultSyncSchedule)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("log_verbose", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_timeout", "0s")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Perlego: Perlego{
			APIURL:      v.GetString("PERLEGO_API_URL"),
			Token:       v.GetString("PERLEGO_TOKEN"),
			Folder:      v.GetString("PERLEGO_FOLDER"),
			HTTPTimeout: v.GetDuration("PERLEGO_HTTP_TIMEOUT"),
		},
		Vault: Vault{
			Dir: getVaultDir(v),
		},
		PerlegoSync: PerlegoSync{
			Enabled:  v.GetBool("PERLEGO_SYNC_ENABLED"),
			Schedule: v.GetString("PERLEGO_SYNC_SCHEDULE"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			TaskTimeout:     v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Security: Security{
			TokenEncryptionKey: v.GetString("TOKEN_ENCRYPTION_KEY"),
			TokenPassphrase:    v.GetString("TOKEN_PASSPHRASE"),
			KeyFilePath:        v.GetString("TOKEN_KEY_FILE"),
		},
		Log: Log{
			Verbose: v.GetBool("LOG_VERBOSE"),
		},
	}
}
