package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/perlego-sync/internal/entities"
)

const ImportQueueName = "perlego_import"

// Syncer runs one Perlego import. scheduler.PerlegoSyncScheduler implements it.
type Syncer interface {
	Sync(ctx context.Context, trigger entities.ImportTrigger) (entities.RunSummary, error)
}

// ImportTask asks a worker to run a Perlego import.
type ImportTask struct {
	Trigger     entities.ImportTrigger `json:"trigger"`
	RequestedAt time.Time              `json:"requested_at"`
}

// Config never retries: a failed import is reported, and the next trigger
// starts over. The queue sets no timeout; ImportProcessor applies the
// opt-in TASK_TIMEOUT.
func (t ImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ImportQueueName,
		MaxAttempts: 1,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportProcessor creates the processor for ImportTask. timeout bounds the
// import itself; zero means no extra bound.
func ImportProcessor(syncer Syncer, timeout time.Duration) backlite.QueueProcessor[ImportTask] {
	return func(ctx context.Context, task ImportTask) error {
		if syncer == nil {
			return errors.New("perlego syncer not configured")
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		trigger := task.Trigger
		if trigger == "" {
			trigger = entities.ImportTriggerHTTP
		}

		summary, err := syncer.Sync(ctx, trigger)
		if err != nil {
			return fmt.Errorf("perlego import: %w", err)
		}

		log.Printf("[TASK] Perlego import %s finished: %d imported, %d skipped, %d failed",
			summary.RunID, summary.Imported, summary.Skipped, summary.Failed)
		return nil
	}
}

// NewImportQueue creates a backlite queue for import tasks.
func NewImportQueue(syncer Syncer, timeout time.Duration) backlite.Queue {
	return backlite.NewQueue(ImportProcessor(syncer, timeout))
}

// EnqueueImport adds an import task and returns its id.
func (c *Client) EnqueueImport(trigger entities.ImportTrigger) (string, error) {
	ids, err := c.Add(ImportTask{Trigger: trigger, RequestedAt: time.Now().UTC()}).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue import: %w", err)
	}
	if len(ids) == 0 {
		return "", errors.New("enqueue import: no task id returned")
	}
	return ids[0], nil
}
