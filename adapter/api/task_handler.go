package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/tasks/application/commands"
	"github.com/yifanzh/studyclock/internal/tasks/application/queries"
)

// TaskHandler handles task API requests.
type TaskHandler struct {
	create    *commands.CreateTaskHandler
	toggle    *commands.ToggleTaskHandler
	setActive *commands.SetActiveTaskHandler
	delete    *commands.DeleteTaskHandler
	list      *queries.ListTasksHandler
	get       *queries.GetTaskHandler
	getStats  *queries.GetTaskStatsHandler
	userID    uuid.UUID
	logger    *slog.Logger
}

// TaskHandlerConfig holds dependencies for the task handler.
type TaskHandlerConfig struct {
	Create    *commands.CreateTaskHandler
	Toggle    *commands.ToggleTaskHandler
	SetActive *commands.SetActiveTaskHandler
	Delete    *commands.DeleteTaskHandler
	List      *queries.ListTasksHandler
	Get       *queries.GetTaskHandler
	GetStats  *queries.GetTaskStatsHandler
	UserID    uuid.UUID
	Logger    *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(cfg TaskHandlerConfig) *TaskHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TaskHandler{
		create:    cfg.Create,
		toggle:    cfg.Toggle,
		setActive: cfg.SetActive,
		delete:    cfg.Delete,
		list:      cfg.List,
		get:       cfg.Get,
		getStats:  cfg.GetStats,
		userID:    cfg.UserID,
		logger:    cfg.Logger,
	}
}

// List handles GET /api/v1/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	tasks, err := h.list.Handle(r.Context(), queries.ListTasksQuery{
		UserID:  userID,
		Subject: r.URL.Query().Get("subject"),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toTaskDTOs(tasks))
}

// Get handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.get.Handle(r.Context(), queries.GetTaskQuery{UserID: userID, TaskID: id})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toTaskDTO(task))
}

type createTaskRequest struct {
	Title              string `json:"title"`
	Subject            string `json:"subject"`
	EstimatedPomodoros int    `json:"estimatedPomodoros"`
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.create.Handle(r.Context(), commands.CreateTaskCommand{
		UserID:             userID,
		Title:              req.Title,
		Subject:            req.Subject,
		EstimatedPomodoros: req.EstimatedPomodoros,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, toTaskDTO(task))
}

// Activate handles POST /api/v1/tasks/{id}/activate.
func (h *TaskHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.setActive.Handle(r.Context(), commands.SetActiveTaskCommand{UserID: userID, TaskID: id})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toTaskDTO(task))
}

type toggleTaskRequest struct {
	IsCompleted bool `json:"isCompleted"`
}

// Toggle handles POST /api/v1/tasks/{id}/toggle.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req toggleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.toggle.Handle(r.Context(), commands.ToggleTaskCommand{
		UserID:      userID,
		TaskID:      id,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toTaskDTO(task))
}

// Delete handles DELETE /api/v1/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.delete.Handle(r.Context(), commands.DeleteTaskCommand{UserID: userID, TaskID: id}); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

// Stats handles GET /api/v1/tasks/stats.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	stats, err := h.getStats.Handle(r.Context(), queries.GetTaskStatsQuery{UserID: userID})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	bySubject := make(map[string]int, len(stats.BySubject))
	for subject, count := range stats.BySubject {
		bySubject[string(subject)] = count
	}
	writeData(w, http.StatusOK, map[string]any{
		"total":     stats.Total,
		"completed": stats.Completed,
		"active":    stats.Active,
		"bySubject": bySubject,
	})
}
