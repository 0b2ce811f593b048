package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/perlego"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
	"github.com/robfig/cron/v3"
)

// Runner performs one import. importers.Importer implements it.
type Runner interface {
	ImportAll(ctx context.Context, token string, trigger entities.ImportTrigger) (entities.RunSummary, error)
}

// SyncSettings is the part of the settings store the scheduler needs.
type SyncSettings interface {
	GetSyncConfig() settingsstore.SyncConfig
	SetSyncStatus(status, message string) error
}

// PerlegoSyncScheduler runs the Perlego import on a cron schedule and on
// demand. All triggers go through Sync.
type PerlegoSyncScheduler struct {
	settings SyncSettings
	runner   Runner

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	isSyncing bool
	syncDone  chan struct{}

	// parent is the context imports run under. Only process shutdown
	// cancels it; the cron loop has its own child context.
	parent     context.Context
	loopCtx    context.Context
	cancelLoop context.CancelFunc
}

func NewPerlegoSyncScheduler(settings SyncSettings, runner Runner) *PerlegoSyncScheduler {
	return &PerlegoSyncScheduler{
		settings: settings,
		runner:   runner,
		cron:     newCron(),
		parent:   context.Background(),
	}
}

func newCron() *cron.Cron {
	return cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
}

// Start begins the scheduler if periodic import is enabled
func (s *PerlegoSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	s.parent = ctx

	config := s.settings.GetSyncConfig()

	if !config.Enabled {
		log.Printf("Perlego sync scheduler: disabled")
		return nil
	}

	if config.Token == "" {
		log.Printf("Perlego sync scheduler: token not configured, skipping")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		_, _ = s.Sync(ctx, entities.ImportTriggerSchedule)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID
	s.loopCtx = loopCtx
	s.cancelLoop = cancel

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule)
	log.Printf("Perlego sync scheduler: started with schedule '%s' (%s). Next run: %v",
		config.Schedule,
		settingsstore.GetCronDescription(config.Schedule),
		nextRun)

	go func() {
		<-loopCtx.Done()
		s.stopLoop(loopCtx)
	}()

	return nil
}

// Stop stops the scheduler and waits for a running import to finish.
// Imports end early only when the context passed to Start is cancelled.
func (s *PerlegoSyncScheduler) Stop() {
	s.stopLoop(nil)

	s.mu.RLock()
	done := s.syncDone
	s.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// stopLoop tears down the cron loop without touching a running import.
// With a non-nil owner it only stops the loop started with that context,
// so a stale watcher cannot stop a rescheduled loop.
func (s *PerlegoSyncScheduler) stopLoop(owner context.Context) {
	s.mu.Lock()
	if !s.isRunning || (owner != nil && s.loopCtx != owner) {
		s.mu.Unlock()
		return
	}
	cancel, c := s.cancelLoop, s.cron
	s.cron = newCron()
	s.isRunning = false
	s.cancelLoop = nil
	s.loopCtx = nil
	s.mu.Unlock()

	cancel()
	c.Stop()

	log.Printf("Perlego sync scheduler: stopped")
}

// Reschedule applies changed settings by replacing the cron entry. An
// import already in progress keeps running.
func (s *PerlegoSyncScheduler) Reschedule() error {
	s.stopLoop(nil)
	s.mu.RLock()
	parent := s.parent
	s.mu.RUnlock()
	return s.Start(parent)
}

// RunNow triggers an immediate import in the background.
func (s *PerlegoSyncScheduler) RunNow(trigger entities.ImportTrigger) {
	s.mu.RLock()
	ctx := s.parent
	s.mu.RUnlock()
	go func() {
		_, _ = s.Sync(ctx, trigger)
	}()
}

func (s *PerlegoSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether an import is currently in progress
func (s *PerlegoSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// GetNextRunTime returns when the next scheduled import will occur
func (s *PerlegoSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// Sync resolves the current token and runs one import, recording the
// outcome as the last sync status.
func (s *PerlegoSyncScheduler) Sync(ctx context.Context, trigger entities.ImportTrigger) (entities.RunSummary, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Perlego sync: skipped (already syncing)")
		return entities.RunSummary{}, ErrAlreadySyncing
	}
	s.isSyncing = true
	done := make(chan struct{})
	s.syncDone = done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.syncDone = nil
		s.mu.Unlock()
		close(done)
	}()

	config := s.settings.GetSyncConfig()
	if config.Token == "" {
		log.Printf("Perlego sync: skipped (token not configured)")
		s.setStatus(settingsstore.SyncStatusFailed, "Token not configured")
		return entities.RunSummary{}, perlego.ErrMissingToken
	}

	log.Printf("Perlego sync: starting (%s)", trigger)
	s.setStatus(settingsstore.SyncStatusRunning, "Import in progress")

	summary, err := s.runner.ImportAll(ctx, config.Token, trigger)
	if err != nil {
		msg := fmt.Sprintf("Import failed: %v", err)
		log.Printf("Perlego sync: %s", msg)
		s.setStatus(settingsstore.SyncStatusFailed, msg)
		return summary, err
	}

	msg := fmt.Sprintf("Imported %d books, skipped %d, failed %d",
		summary.Imported, summary.Skipped, summary.Failed)
	s.setStatus(settingsstore.SyncStatusSuccess, msg)
	return summary, nil
}

func (s *PerlegoSyncScheduler) setStatus(status, message string) {
	if err := s.settings.SetSyncStatus(status, message); err != nil {
		log.Printf("Perlego sync: failed to save status: %v", err)
	}
}
