package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/notify"
)

func TestStartImport_Enqueues(t *testing.T) {
	s := newTestServer(t, true)
	require.NoError(t, s.settings.SetToken("token-123456789"))

	w := s.do(t, http.MethodPost, "/api/import", nil)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"task_id":"task-1"`)
	assert.Equal(t, []entities.ImportTrigger{entities.ImportTriggerHTTP}, s.queue.enqueued)
	assert.Empty(t, s.scheduler.runNow)
}

func TestStartImport_FallsBackToScheduler(t *testing.T) {
	s := newTestServer(t, false)
	require.NoError(t, s.settings.SetToken("token-123456789"))

	w := s.do(t, http.MethodPost, "/api/import", nil)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []entities.ImportTrigger{entities.ImportTriggerHTTP}, s.scheduler.runNow)
}

func TestStartImport_MissingToken(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodPost, "/api/import", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_token", decode[ErrorResponse](t, w).Code)
	assert.Empty(t, s.queue.enqueued)
}

func TestStartImport_AlreadyRunning(t *testing.T) {
	s := newTestServer(t, true)
	require.NoError(t, s.settings.SetToken("token-123456789"))
	s.scheduler.syncing = true

	w := s.do(t, http.MethodPost, "/api/import", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "import_in_progress", decode[ErrorResponse](t, w).Code)
}

func TestStartImport_EnqueueFailure(t *testing.T) {
	s := newTestServer(t, true)
	require.NoError(t, s.settings.SetToken("token-123456789"))
	s.queue.err = errBoom

	w := s.do(t, http.MethodPost, "/api/import", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestImportStatus(t *testing.T) {
	s := newTestServer(t, false)
	next := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	s.scheduler.running = true
	s.scheduler.next = &next
	s.status.Report(notify.Event{Kind: notify.EventFailed, Message: "Perlego import failed, check your credentials", Urgent: true, Force: true})

	run, err := s.runs.StartRun("run-1", entities.ImportTriggerSchedule, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.runs.FinishRun(run.ID, entities.RunSummary{RunID: "run-1", Imported: 1, FinishedAt: time.Now()}))

	w := s.do(t, http.MethodGet, "/api/import/status", nil)

	require.Equal(t, http.StatusOK, w.Code)
	response := decode[ImportStatusResponse](t, w)
	require.NotNil(t, response.Notice)
	assert.Equal(t, notify.EventFailed, response.Notice.Kind)
	assert.True(t, response.Notice.Urgent)
	assert.True(t, response.Scheduled)
	assert.False(t, response.Syncing)
	require.NotNil(t, response.NextRun)
	assert.True(t, next.Equal(*response.NextRun))
	require.NotNil(t, response.LatestRun)
	assert.Equal(t, "run-1", response.LatestRun.RunID)
}

func TestImportRuns(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/api/import/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"runs":[]}`, w.Body.String())

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"older", "newer"} {
		run, err := s.runs.StartRun(id, entities.ImportTriggerCLI, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, s.runs.FinishRun(run.ID, entities.RunSummary{
			RunID:      id,
			FinishedAt: time.Now(),
			Outcomes: []entities.ImportOutcome{
				{BookID: "1", Title: "My Book", Status: entities.OutcomeImported, Path: "Perlego/My Book.md"},
			},
			Imported: 1,
		}))
	}

	w = s.do(t, http.MethodGet, "/api/import/runs?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Runs []entities.ImportRun `json:"runs"`
	}](t, w)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, "newer", list.Runs[0].RunID)

	w = s.do(t, http.MethodGet, "/api/import/runs/older", nil)
	require.Equal(t, http.StatusOK, w.Code)
	run := decode[entities.ImportRun](t, w)
	require.Len(t, run.Books, 1)
	assert.Equal(t, "Perlego/My Book.md", run.Books[0].Path)

	w = s.do(t, http.MethodGet, "/api/import/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskStatus(t *testing.T) {
	s := newTestServer(t, true)
	s.queue.statuses["task-1"] = backlite.TaskStatusSuccess

	w := s.do(t, http.MethodGet, "/api/tasks/task-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"task-1","status":"success"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/tasks/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskRoutesRequireQueue(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/api/tasks/task-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
