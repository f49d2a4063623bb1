package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/timer/application/commands"
	"github.com/yifanzh/studyclock/internal/timer/application/queries"
)

// SessionHandler handles timer session API requests.
type SessionHandler struct {
	start      *commands.StartSessionHandler
	pause      *commands.PauseSessionHandler
	resume     *commands.ResumeSessionHandler
	complete   *commands.CompleteSessionHandler
	cancel     *commands.CancelSessionHandler
	heartbeat  *commands.HeartbeatSessionHandler
	getActive  *queries.GetActiveSessionHandler
	getHistory *queries.GetSessionHistoryHandler
	getStats   *queries.GetSessionStatsHandler
	userID     uuid.UUID
	logger     *slog.Logger
}

// SessionHandlerConfig holds dependencies for the session handler.
type SessionHandlerConfig struct {
	Start      *commands.StartSessionHandler
	Pause      *commands.PauseSessionHandler
	Resume     *commands.ResumeSessionHandler
	Complete   *commands.CompleteSessionHandler
	Cancel     *commands.CancelSessionHandler
	Heartbeat  *commands.HeartbeatSessionHandler
	GetActive  *queries.GetActiveSessionHandler
	GetHistory *queries.GetSessionHistoryHandler
	GetStats   *queries.GetSessionStatsHandler
	UserID     uuid.UUID
	Logger     *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(cfg SessionHandlerConfig) *SessionHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SessionHandler{
		start:      cfg.Start,
		pause:      cfg.Pause,
		resume:     cfg.Resume,
		complete:   cfg.Complete,
		cancel:     cfg.Cancel,
		heartbeat:  cfg.Heartbeat,
		getActive:  cfg.GetActive,
		getHistory: cfg.GetHistory,
		getStats:   cfg.GetStats,
		userID:     cfg.UserID,
		logger:     cfg.Logger,
	}
}

// GetActive handles GET /api/v1/sessions/active. The data field is
// null when no session is running.
func (h *SessionHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	session, err := h.getActive.Handle(r.Context(), queries.GetActiveSessionQuery{UserID: userID})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if session == nil {
		writeData(w, http.StatusOK, nil)
		return
	}
	writeData(w, http.StatusOK, toSessionDTO(session))
}

type startSessionRequest struct {
	TaskID          *string `json:"taskId"`
	Kind            string  `json:"kind"`
	DurationMinutes int     `json:"durationMinutes"`
}

// Start handles POST /api/v1/sessions.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd := commands.StartSessionCommand{
		UserID:          userID,
		Kind:            req.Kind,
		DurationMinutes: req.DurationMinutes,
	}
	if req.TaskID != nil && *req.TaskID != "" {
		taskID, err := uuid.Parse(*req.TaskID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task id")
			return
		}
		cmd.TaskID = &taskID
	}

	session, err := h.start.Handle(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, toSessionDTO(session))
}

// Pause handles POST /api/v1/sessions/{id}/pause.
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.pause.Handle(r.Context(), commands.PauseSessionCommand{SessionID: id})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSessionDTO(session))
}

// Resume handles POST /api/v1/sessions/{id}/resume.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.resume.Handle(r.Context(), commands.ResumeSessionCommand{SessionID: id})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSessionDTO(session))
}

// Complete handles POST /api/v1/sessions/{id}/complete.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.complete.Handle(r.Context(), commands.CompleteSessionCommand{SessionID: id})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSessionDTO(session))
}

// Cancel handles POST /api/v1/sessions/{id}/cancel.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.cancel.Handle(r.Context(), commands.CancelSessionCommand{SessionID: id})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSessionDTO(session))
}

type heartbeatRequest struct {
	Status         string `json:"status"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
}

// Heartbeat handles POST /api/v1/sessions/{id}/heartbeat.
func (h *SessionHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req heartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.heartbeat.Handle(r.Context(), commands.HeartbeatSessionCommand{
		SessionID:      id,
		Status:         req.Status,
		ElapsedSeconds: req.ElapsedSeconds,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSessionDTO(session))
}

// History handles GET /api/v1/sessions.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	sessions, err := h.getHistory.Handle(r.Context(), queries.GetSessionHistoryQuery{
		UserID: userID,
		Limit:  parseIntParam(r, "limit", 20),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSessionDTOs(sessions))
}

// Stats handles GET /api/v1/sessions/stats.
func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	result, err := h.getStats.Handle(r.Context(), queries.GetSessionStatsQuery{
		UserID: userID,
		Days:   parseIntParam(r, "days", 7),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
