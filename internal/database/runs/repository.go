// Package runs persists the history of import runs.
//
// # Usage
//
//	repo := runs.NewRepository(db)
//	run, err := repo.StartRun(runID, entities.ImportTriggerCLI, time.Now())
//	err = repo.FinishRun(run.ID, summary)
package runs

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/perlego-sync/internal/entities"
)

const maxMessageLength = 500

// Repository handles import run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StartRun inserts a run in the running state.
func (r *Repository) StartRun(runID string, trigger entities.ImportTrigger, startedAt time.Time) (*entities.ImportRun, error) {
	run := &entities.ImportRun{
		RunID:     runID,
		Trigger:   trigger,
		Status:    entities.ImportRunStatusRunning,
		StartedAt: startedAt,
	}
	if err := r.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// FinishRun stores the counters and per-book outcomes of a finished run.
func (r *Repository) FinishRun(id uint, summary entities.RunSummary) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		status := entities.ImportRunStatusCompleted
		message := ""
		if summary.Err != nil {
			status = entities.ImportRunStatusAborted
			message = truncate(summary.Err.Error(), maxMessageLength)
		}

		finishedAt := summary.FinishedAt
		if finishedAt.IsZero() {
			finishedAt = time.Now()
		}

		err := tx.Model(&entities.ImportRun{}).Where("id = ?", id).Updates(map[string]any{
			"status":      status,
			"message":     message,
			"imported":    summary.Imported,
			"skipped":     summary.Skipped,
			"failed":      summary.Failed,
			"finished_at": finishedAt,
		}).Error
		if err != nil {
			return err
		}

		if len(summary.Outcomes) == 0 {
			return nil
		}

		books := make([]entities.ImportRunBook, 0, len(summary.Outcomes))
		for _, o := range summary.Outcomes {
			books = append(books, entities.ImportRunBook{
				ImportRunID: id,
				BookID:      o.BookID,
				Title:       o.Title,
				Status:      o.Status,
				Reason:      truncate(o.Reason, maxMessageLength),
				Path:        o.Path,
			})
		}
		return tx.Create(&books).Error
	})
}

// GetRun retrieves a run with its book outcomes.
func (r *Repository) GetRun(runID string) (*entities.ImportRun, error) {
	var run entities.ImportRun
	err := r.db.Preload("Books").Where("run_id = ?", runID).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs without book outcomes.
func (r *Repository) ListRuns(limit int) ([]entities.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []entities.ImportRun
	err := r.db.Order("started_at DESC").Order("id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// LatestRun returns the most recently started run, or nil when there is none.
func (r *Repository) LatestRun() (*entities.ImportRun, error) {
	runs, err := r.ListRuns(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
