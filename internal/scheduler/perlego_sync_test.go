package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/perlego"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	mu       sync.Mutex
	config   settingsstore.SyncConfig
	statuses []string
	messages []string
}

func (f *fakeSettings) GetSyncConfig() settingsstore.SyncConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config
}

func (f *fakeSettings) SetSyncStatus(status, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	f.messages = append(f.messages, message)
	return nil
}

type fakeRunner struct {
	mu       sync.Mutex
	tokens   []string
	triggers []entities.ImportTrigger
	summary  entities.RunSummary
	err      error
	block    chan struct{}
}

func (f *fakeRunner) ImportAll(ctx context.Context, token string, trigger entities.ImportTrigger) (entities.RunSummary, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.triggers = append(f.triggers, trigger)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.summary, f.err
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

func enabledSettings() *fakeSettings {
	return &fakeSettings{config: settingsstore.SyncConfig{
		Enabled:  true,
		Token:    "token",
		Folder:   "Perlego",
		Schedule: "0 */6 * * *",
	}}
}

func TestSync_Success(t *testing.T) {
	settings := enabledSettings()
	runner := &fakeRunner{summary: entities.RunSummary{Imported: 2, Skipped: 1}}
	s := NewPerlegoSyncScheduler(settings, runner)

	summary, err := s.Sync(context.Background(), entities.ImportTriggerHTTP)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, []string{"token"}, runner.tokens)
	assert.Equal(t, []entities.ImportTrigger{entities.ImportTriggerHTTP}, runner.triggers)
	assert.Equal(t, []string{settingsstore.SyncStatusRunning, settingsstore.SyncStatusSuccess}, settings.statuses)
	assert.Equal(t, "Imported 2 books, skipped 1, failed 0", settings.messages[1])
	assert.False(t, s.IsSyncing())
}

func TestSync_MissingToken(t *testing.T) {
	settings := enabledSettings()
	settings.config.Token = ""
	runner := &fakeRunner{}
	s := NewPerlegoSyncScheduler(settings, runner)

	_, err := s.Sync(context.Background(), entities.ImportTriggerSchedule)

	assert.ErrorIs(t, err, perlego.ErrMissingToken)
	assert.Equal(t, 0, runner.calls())
	assert.Equal(t, []string{settingsstore.SyncStatusFailed}, settings.statuses)
}

func TestSync_Failure(t *testing.T) {
	settings := enabledSettings()
	runner := &fakeRunner{err: errors.New("fetch book list: invalid token")}
	s := NewPerlegoSyncScheduler(settings, runner)

	_, err := s.Sync(context.Background(), entities.ImportTriggerSchedule)

	require.Error(t, err)
	assert.Equal(t, settingsstore.SyncStatusFailed, settings.statuses[1])
	assert.Contains(t, settings.messages[1], "invalid token")
}

func TestSync_RejectsOverlap(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s := NewPerlegoSyncScheduler(enabledSettings(), runner)

	done := make(chan error, 1)
	go func() {
		_, err := s.Sync(context.Background(), entities.ImportTriggerSchedule)
		done <- err
	}()

	require.Eventually(t, func() bool { return runner.calls() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.IsSyncing())

	_, err := s.Sync(context.Background(), entities.ImportTriggerHTTP)
	assert.ErrorIs(t, err, ErrAlreadySyncing)

	close(runner.block)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, runner.calls())
}

func TestStart(t *testing.T) {
	t.Run("disabled does not start", func(t *testing.T) {
		settings := enabledSettings()
		settings.config.Enabled = false
		s := NewPerlegoSyncScheduler(settings, &fakeRunner{})

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.GetNextRunTime())
	})

	t.Run("missing token does not start", func(t *testing.T) {
		settings := enabledSettings()
		settings.config.Token = ""
		s := NewPerlegoSyncScheduler(settings, &fakeRunner{})

		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		settings := enabledSettings()
		settings.config.Schedule = "whenever"
		s := NewPerlegoSyncScheduler(settings, &fakeRunner{})

		assert.Error(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
	})

	t.Run("enabled starts and reports next run", func(t *testing.T) {
		s := NewPerlegoSyncScheduler(enabledSettings(), &fakeRunner{})

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop()

		assert.True(t, s.IsRunning())
		next := s.GetNextRunTime()
		require.NotNil(t, next)
		assert.True(t, next.After(time.Now()))
	})

	t.Run("context cancellation stops", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		s := NewPerlegoSyncScheduler(enabledSettings(), &fakeRunner{})

		require.NoError(t, s.Start(ctx))
		cancel()

		require.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 5*time.Millisecond)
	})
}

func TestReschedule(t *testing.T) {
	settings := enabledSettings()
	s := NewPerlegoSyncScheduler(settings, &fakeRunner{})
	require.NoError(t, s.Start(context.Background()))

	settings.mu.Lock()
	settings.config.Schedule = "0 * * * *"
	settings.mu.Unlock()

	require.NoError(t, s.Reschedule())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 0, next.Minute())

	settings.mu.Lock()
	settings.config.Enabled = false
	settings.mu.Unlock()
	require.NoError(t, s.Reschedule())
	assert.False(t, s.IsRunning())
}

func TestRunNow(t *testing.T) {
	runner := &fakeRunner{}
	s := NewPerlegoSyncScheduler(enabledSettings(), runner)

	s.RunNow(entities.ImportTriggerHTTP)

	require.Eventually(t, func() bool { return runner.calls() == 1 }, time.Second, 5*time.Millisecond)
}

type contextRunner struct {
	started chan context.Context
	release chan struct{}
}

func (r *contextRunner) ImportAll(ctx context.Context, token string, trigger entities.ImportTrigger) (entities.RunSummary, error) {
	r.started <- ctx
	<-r.release
	return entities.RunSummary{}, ctx.Err()
}

func TestReschedule_KeepsImportRunning(t *testing.T) {
	settings := enabledSettings()
	runner := &contextRunner{started: make(chan context.Context, 1), release: make(chan struct{})}
	s := NewPerlegoSyncScheduler(settings, runner)
	require.NoError(t, s.Start(context.Background()))

	s.RunNow(entities.ImportTriggerHTTP)

	var importCtx context.Context
	select {
	case importCtx = <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("import did not start")
	}

	settings.mu.Lock()
	settings.config.Schedule = "0 * * * *"
	settings.mu.Unlock()

	rescheduled := make(chan error, 1)
	go func() { rescheduled <- s.Reschedule() }()

	select {
	case err := <-rescheduled:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reschedule waited for the running import")
	}

	assert.NoError(t, importCtx.Err())
	assert.True(t, s.IsSyncing())
	assert.True(t, s.IsRunning())

	close(runner.release)
	require.Eventually(t, func() bool { return !s.IsSyncing() }, time.Second, 5*time.Millisecond)
	settings.mu.Lock()
	assert.Equal(t, settingsstore.SyncStatusSuccess, settings.statuses[len(settings.statuses)-1])
	settings.mu.Unlock()
	s.Stop()
}

func TestStop_WaitsForRunningImport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &contextRunner{started: make(chan context.Context, 1), release: make(chan struct{})}
	s := NewPerlegoSyncScheduler(enabledSettings(), runner)
	require.NoError(t, s.Start(ctx))

	s.RunNow(entities.ImportTriggerHTTP)
	importCtx := <-runner.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	assert.Never(t, func() bool {
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, importCtx.Err(), context.Canceled)
	close(runner.release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop did not return after the import finished")
	}
	assert.False(t, s.IsSyncing())
}
