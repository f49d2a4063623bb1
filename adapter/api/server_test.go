package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	identityApplication "github.com/yifanzh/studyclock/internal/identity/application"
	identityPersistence "github.com/yifanzh/studyclock/internal/identity/infrastructure/persistence"
	insightsCommands "github.com/yifanzh/studyclock/internal/insights/application/commands"
	insightsQueries "github.com/yifanzh/studyclock/internal/insights/application/queries"
	insightsPersistence "github.com/yifanzh/studyclock/internal/insights/infrastructure/persistence"
	sharedPersistence "github.com/yifanzh/studyclock/internal/shared/infrastructure/persistence"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/migrations"
	"github.com/yifanzh/studyclock/internal/shared/infrastructure/outbox"
	tasksCommands "github.com/yifanzh/studyclock/internal/tasks/application/commands"
	tasksQueries "github.com/yifanzh/studyclock/internal/tasks/application/queries"
	tasksPersistence "github.com/yifanzh/studyclock/internal/tasks/infrastructure/persistence"
	timerCommands "github.com/yifanzh/studyclock/internal/timer/application/commands"
	timerQueries "github.com/yifanzh/studyclock/internal/timer/application/queries"
	timerPersistence "github.com/yifanzh/studyclock/internal/timer/infrastructure/persistence"
	"github.com/yifanzh/studyclock/pkg/observability"
)

var testUserID = uuid.MustParse("b7a93a61-43cb-44a5-9f7e-3f2b7f6c1a01")

// newTestServer wires the full API over an in-memory database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := migrations.SQLiteSchema()
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessionRepo := timerPersistence.NewSQLiteRepository(db)
	taskRepo := tasksPersistence.NewSQLiteRepository(db)
	statsRepo := insightsPersistence.NewSQLiteStatsRepository(db)
	recordRepo := insightsPersistence.NewSQLiteRecordRepository(db)
	userRepo := identityPersistence.NewSQLiteUserRepository(db)
	settingsRepo := identityPersistence.NewSQLiteSettingsRepository(db)
	outboxRepo := outbox.NewSQLiteRepository(db)
	uow := sharedPersistence.NewSQLiteUnitOfWork(db)

	resolver := tasksQueries.NewSubjectResolver(taskRepo)
	recordCompletion := insightsCommands.NewRecordSessionCompletionHandler(statsRepo, resolver)
	focusCompletion := tasksCommands.NewRecordFocusCompletionHandler(taskRepo, statsRepo, outboxRepo, logger)
	complete := timerCommands.NewCompleteSessionHandler(sessionRepo, recordCompletion, focusCompletion, outboxRepo, uow)

	identity := identityApplication.NewService(userRepo, settingsRepo, nil, logger)

	sessions := NewSessionHandler(SessionHandlerConfig{
		Start:      timerCommands.NewStartSessionHandler(sessionRepo, outboxRepo, uow),
		Pause:      timerCommands.NewPauseSessionHandler(sessionRepo),
		Resume:     timerCommands.NewResumeSessionHandler(sessionRepo),
		Complete:   complete,
		Cancel:     timerCommands.NewCancelSessionHandler(sessionRepo, outboxRepo, uow),
		Heartbeat:  timerCommands.NewHeartbeatSessionHandler(sessionRepo, complete),
		GetActive:  timerQueries.NewGetActiveSessionHandler(sessionRepo),
		GetHistory: timerQueries.NewGetSessionHistoryHandler(sessionRepo),
		GetStats:   timerQueries.NewGetSessionStatsHandler(sessionRepo),
		UserID:     testUserID,
		Logger:     logger,
	})
	tasks := NewTaskHandler(TaskHandlerConfig{
		Create:    tasksCommands.NewCreateTaskHandler(taskRepo, statsRepo, outboxRepo, uow),
		Toggle:    tasksCommands.NewToggleTaskHandler(taskRepo, statsRepo, outboxRepo, uow),
		SetActive: tasksCommands.NewSetActiveTaskHandler(taskRepo, uow),
		Delete:    tasksCommands.NewDeleteTaskHandler(taskRepo, outboxRepo, uow),
		List:      tasksQueries.NewListTasksHandler(taskRepo),
		Get:       tasksQueries.NewGetTaskHandler(taskRepo),
		GetStats:  tasksQueries.NewGetTaskStatsHandler(taskRepo),
		UserID:    testUserID,
		Logger:    logger,
	})
	settings := NewSettingsHandler(identity, testUserID, logger)
	stats := NewStatsHandler(StatsHandlerConfig{
		Summary:      insightsQueries.NewGetSummaryHandler(statsRepo),
		Breakdown:    insightsQueries.NewGetBreakdownHandler(statsRepo),
		Daily:        insightsQueries.NewGetDailySeriesHandler(statsRepo),
		Heatmap:      insightsQueries.NewGetHeatmapHandler(statsRepo),
		ListRecords:  insightsQueries.NewListRecordsHandler(recordRepo),
		CreateRecord: insightsCommands.NewCreateRecordHandler(recordRepo, statsRepo, uow),
		DeleteRecord: insightsCommands.NewDeleteRecordHandler(recordRepo),
		UserID:       testUserID,
		Logger:       logger,
	})

	server := NewServer(DefaultServerConfig(), Handlers{
		Sessions: sessions,
		Tasks:    tasks,
		Settings: settings,
		Stats:    stats,
	}, observability.NewHealthRegistry(), observability.NewInMemoryMetrics(), logger)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	encoded, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(encoded, out))
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServer_SessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// nothing running
	status, env := doRequest(t, ts, http.MethodGet, "/api/v1/sessions/active", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)

	// start
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/sessions", map[string]any{
		"kind":            "FOCUS",
		"durationMinutes": 25,
	})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, env.Success)
	var session SessionDTO
	decodeData(t, env, &session)
	assert.Equal(t, "RUNNING", session.Status)
	assert.Equal(t, 1500, session.DurationSeconds)

	// pause and resume
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/sessions/"+session.ID+"/pause", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &session)
	assert.Equal(t, "PAUSED", session.Status)
	assert.Equal(t, 1, session.PauseCount)

	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/sessions/"+session.ID+"/resume", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &session)
	assert.Equal(t, "RUNNING", session.Status)

	// heartbeat reports progress
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/sessions/"+session.ID+"/heartbeat", map[string]any{
		"status":         "RUNNING",
		"elapsedSeconds": 600,
	})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &session)
	assert.Equal(t, 600, session.ElapsedSeconds)

	// complete
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/sessions/"+session.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &session)
	assert.Equal(t, "COMPLETED", session.Status)

	// completing again conflicts
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/sessions/"+session.ID+"/complete", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	// the day's summary now counts one pomodoro
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/stats/summary?period=today", nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		TotalPomodoros    int `json:"totalPomodoros"`
		TotalFocusSeconds int `json:"totalFocusSeconds"`
	}
	decodeData(t, env, &summary)
	assert.Equal(t, 1, summary.TotalPomodoros)
	assert.Equal(t, 600, summary.TotalFocusSeconds)

	// history shows the terminal session
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusOK, status)
	var history []SessionDTO
	decodeData(t, env, &history)
	assert.Len(t, history, 1)
}

func TestServer_StartValidation(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodPost, "/api/v1/sessions", map[string]any{
		"kind":            "NAP",
		"durationMinutes": 25,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	status, _ = doRequest(t, ts, http.MethodPost, "/api/v1/sessions/"+uuid.NewString()+"/pause", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/sessions/not-a-uuid/pause", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestServer_TaskFlow(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":              "数学真题",
		"subject":            "MATH",
		"estimatedPomodoros": 4,
	})
	require.Equal(t, http.StatusCreated, status)
	var task TaskDTO
	decodeData(t, env, &task)
	assert.True(t, task.IsActive)
	assert.Equal(t, "数学", task.SubjectName)

	// a second task takes over the active slot
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":   "英语阅读",
		"subject": "ENGLISH",
	})
	require.Equal(t, http.StatusCreated, status)
	var second TaskDTO
	decodeData(t, env, &second)
	assert.True(t, second.IsActive)

	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/tasks", nil)
	require.Equal(t, http.StatusOK, status)
	var tasks []TaskDTO
	decodeData(t, env, &tasks)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.False(t, tasks[1].IsActive)

	// hand the active slot back to the first task
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/tasks/"+task.ID+"/activate", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &task)
	assert.True(t, task.IsActive)

	// complete one
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/tasks/"+second.ID+"/toggle", map[string]any{
		"isCompleted": true,
	})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &second)
	assert.True(t, second.IsCompleted)

	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/tasks/stats", nil)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
		Active    int `json:"active"`
	}
	decodeData(t, env, &stats)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Active)

	// delete and verify it is gone
	status, _ = doRequest(t, ts, http.MethodDelete, "/api/v1/tasks/"+second.ID, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = doRequest(t, ts, http.MethodGet, "/api/v1/tasks/"+second.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_FocusSessionCreditsTask(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":              "政治刷题",
		"subject":            "POLITICS",
		"estimatedPomodoros": 1,
	})
	require.Equal(t, http.StatusCreated, status)
	var task TaskDTO
	decodeData(t, env, &task)

	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/sessions", map[string]any{
		"taskId":          task.ID,
		"kind":            "FOCUS",
		"durationMinutes": 25,
	})
	require.Equal(t, http.StatusCreated, status)
	var session SessionDTO
	decodeData(t, env, &session)

	status, _ = doRequest(t, ts, http.MethodPost, "/api/v1/sessions/"+session.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, status)

	// the single-pomodoro estimate means the task auto-completed
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &task)
	assert.Equal(t, 1, task.CompletedPomodoros)
	assert.True(t, task.IsCompleted)

	// and the subject bucket got the pomodoro
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/stats/breakdown?period=today", nil)
	require.Equal(t, http.StatusOK, status)
	var slices []struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	decodeData(t, env, &slices)
	require.Len(t, slices, 1)
	assert.Equal(t, "政治", slices[0].Name)
	assert.Equal(t, 1, slices[0].Value)
}

func TestServer_Settings(t *testing.T) {
	ts := newTestServer(t)

	// defaults materialize on first read
	status, env := doRequest(t, ts, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, status)
	var settings SettingsDTO
	decodeData(t, env, &settings)
	assert.Equal(t, 25, settings.FocusDuration)
	assert.Equal(t, 4, settings.PomodorosUntilLongBreak)

	// partial update
	status, env = doRequest(t, ts, http.MethodPut, "/api/v1/settings", map[string]any{
		"focusDuration":  45,
		"autoStartBreak": true,
	})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &settings)
	assert.Equal(t, 45, settings.FocusDuration)
	assert.True(t, settings.AutoStartBreak)
	assert.Equal(t, 5, settings.BreakDuration)

	// out-of-range rejected
	status, env = doRequest(t, ts, http.MethodPut, "/api/v1/settings", map[string]any{
		"focusDuration": 240,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)

	// reset restores defaults
	status, env = doRequest(t, ts, http.MethodPost, "/api/v1/settings/reset", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &settings)
	assert.Equal(t, 25, settings.FocusDuration)
	assert.False(t, settings.AutoStartBreak)
}

func TestServer_StudyRecords(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodPost, "/api/v1/records", map[string]any{
		"subject":       "ENGLISH",
		"durationHours": 1.5,
		"notes":         "外刊精读",
	})
	require.Equal(t, http.StatusCreated, status)
	var record RecordDTO
	decodeData(t, env, &record)
	assert.Equal(t, 1.5, record.DurationHours)

	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/records", nil)
	require.Equal(t, http.StatusOK, status)
	var records []RecordDTO
	decodeData(t, env, &records)
	require.Len(t, records, 1)

	// the record rolled into the day's focus total
	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/stats/summary?period=today", nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		TotalFocusSeconds int `json:"totalFocusSeconds"`
	}
	decodeData(t, env, &summary)
	assert.Equal(t, 5400, summary.TotalFocusSeconds)

	status, _ = doRequest(t, ts, http.MethodDelete, "/api/v1/records/"+record.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/records", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &records)
	assert.Empty(t, records)
}

func TestServer_Subjects(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodGet, "/api/v1/subjects", nil)
	require.Equal(t, http.StatusOK, status)
	var subjects []SubjectDTO
	decodeData(t, env, &subjects)
	require.Len(t, subjects, 4)
	assert.Equal(t, "COMPUTER_408", subjects[0].ID)
	assert.Equal(t, "计算机408", subjects[0].Name)
	assert.NotEmpty(t, subjects[0].Color)
}

func TestServer_EmptyStats(t *testing.T) {
	ts := newTestServer(t)

	status, env := doRequest(t, ts, http.MethodGet, "/api/v1/stats/summary?period=week", nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		TotalPomodoros int     `json:"totalPomodoros"`
		TotalHours     float64 `json:"totalHours"`
		Subjects       []any   `json:"subjects"`
	}
	decodeData(t, env, &summary)
	assert.Equal(t, 0, summary.TotalPomodoros)
	assert.Equal(t, 0.0, summary.TotalHours)
	assert.Len(t, summary.Subjects, 4)

	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/stats/daily?days=7", nil)
	require.Equal(t, http.StatusOK, status)
	var points []any
	decodeData(t, env, &points)
	assert.Len(t, points, 7)

	status, env = doRequest(t, ts, http.MethodGet, "/api/v1/stats/summary?period=year", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}
