// Package database provides the data access layer for the application.
//
// The Database type owns the SQLite connection, runs migrations and keeps
// key/value settings. Domain-specific persistence lives in sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, settings
//	├── audit/           # Advisory notices and settings changes
//	└── runs/            # Import run history and per-book outcomes
//
// Each sub-package exposes a Repository built from the shared *gorm.DB:
//
//	db, err := database.NewDatabase("./perlego-sync.db")
//	runsRepo := runs.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
package database
