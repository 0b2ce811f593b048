package entities

import (
	"time"
)

type ImportRunStatus string

const (
	ImportRunStatusRunning   ImportRunStatus = "running"
	ImportRunStatusCompleted ImportRunStatus = "completed"
	ImportRunStatusAborted   ImportRunStatus = "aborted"
)

type ImportTrigger string

const (
	ImportTriggerCLI      ImportTrigger = "cli"
	ImportTriggerSchedule ImportTrigger = "schedule"
	ImportTriggerHTTP     ImportTrigger = "http"
)

// ImportRun is the persisted history of a single import run.
type ImportRun struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	RunID      string          `gorm:"uniqueIndex;size:36" json:"run_id"`
	Trigger    ImportTrigger   `gorm:"size:20" json:"trigger"`
	Status     ImportRunStatus `gorm:"index;size:20" json:"status"`
	Message    string          `gorm:"size:500" json:"message,omitempty"`
	Imported   int             `json:"imported"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	StartedAt  time.Time       `gorm:"index" json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Books      []ImportRunBook `gorm:"foreignKey:ImportRunID;constraint:OnDelete:CASCADE" json:"books,omitempty"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}

// ImportRunBook stores the outcome of one book within a run.
type ImportRunBook struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ImportRunID uint          `gorm:"index" json:"import_run_id"`
	BookID      string        `gorm:"size:64" json:"book_id"`
	Title       string        `gorm:"size:512" json:"title,omitempty"`
	Status      OutcomeStatus `gorm:"size:20" json:"status"`
	Reason      string        `gorm:"size:500" json:"reason,omitempty"`
	Path        string        `gorm:"size:1024" json:"path,omitempty"`
}

func (ImportRunBook) TableName() string {
	return "import_run_books"
}
