package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/perlego-sync/internal/crypto"
	"github.com/mrlokans/perlego-sync/internal/database"
	"github.com/mrlokans/perlego-sync/internal/database/runs"
	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/notify"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
)

type fakeScheduler struct {
	mu            sync.Mutex
	syncing       bool
	running       bool
	next          *time.Time
	reschedules   int
	runNow        []entities.ImportTrigger
	rescheduleErr error
}

func (f *fakeScheduler) Reschedule() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reschedules++
	return f.rescheduleErr
}

func (f *fakeScheduler) RunNow(trigger entities.ImportTrigger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runNow = append(f.runNow, trigger)
}

func (f *fakeScheduler) IsRunning() bool            { return f.running }
func (f *fakeScheduler) IsSyncing() bool            { return f.syncing }
func (f *fakeScheduler) GetNextRunTime() *time.Time { return f.next }

type fakeQueue struct {
	enqueued []entities.ImportTrigger
	err      error
	statuses map[string]backlite.TaskStatus
}

func (f *fakeQueue) EnqueueImport(trigger entities.ImportTrigger) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.enqueued = append(f.enqueued, trigger)
	return "task-1", nil
}

func (f *fakeQueue) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	if status, ok := f.statuses[taskID]; ok {
		return status, nil
	}
	return backlite.TaskStatusNotFound, nil
}

type fakeAudit struct {
	mu       sync.Mutex
	actions  []string
	events   []entities.AuditEvent
	lastType entities.AuditEventType
	err      error
}

func (f *fakeAudit) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	f.lastType = eventType
	if f.err != nil {
		return nil, 0, f.err
	}
	end := offset + limit
	if end > len(f.events) {
		end = len(f.events)
	}
	if offset > end {
		offset = end
	}
	return f.events[offset:end], int64(len(f.events)), nil
}

func (f *fakeAudit) LogSettings(action, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

type testServer struct {
	router    *gin.Engine
	db        *database.Database
	settings  *settingsstore.SettingsStore
	runs      *runs.Repository
	scheduler *fakeScheduler
	queue     *fakeQueue
	audit     *fakeAudit
	status    *notify.Status
}

func newTestServer(t *testing.T, withQueue bool) *testServer {
	t.Helper()
	for _, k := range []string{
		settingsstore.EnvPerlegoToken,
		settingsstore.EnvPerlegoFolder,
		settingsstore.EnvSyncEnabled,
		settingsstore.EnvSyncSchedule,
	} {
		t.Setenv(k, "")
	}

	db := setupTestDB(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cipher, err := crypto.NewTokenCipherFromBase64(key)
	require.NoError(t, err)

	s := &testServer{
		db:        db,
		settings:  settingsstore.New(db, cipher),
		runs:      runs.NewRepository(db.DB),
		scheduler: &fakeScheduler{},
		audit:     &fakeAudit{},
		status:    notify.NewStatus(),
	}

	cfg := RouterConfig{
		Database:  db,
		Settings:  s.settings,
		Scheduler: s.scheduler,
		Runs:      s.runs,
		Audit:     s.audit,
		Status:    s.status,
		Version:   "test",
	}
	if withQueue {
		s.queue = &fakeQueue{statuses: map[string]backlite.TaskStatus{}}
		cfg.TaskQueue = s.queue
	}
	s.router = NewRouter(cfg)
	return s
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var errBoom = errors.New("boom")
