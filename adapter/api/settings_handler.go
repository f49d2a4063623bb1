package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/identity/application"
	"github.com/yifanzh/studyclock/internal/identity/domain"
)

// SettingsHandler handles settings API requests.
type SettingsHandler struct {
	identity *application.Service
	userID   uuid.UUID
	logger   *slog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(identity *application.Service, userID uuid.UUID, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{identity: identity, userID: userID, logger: logger}
}

// Get handles GET /api/v1/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	settings, err := h.identity.GetSettings(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSettingsDTO(settings))
}

type updateSettingsRequest struct {
	FocusDuration           *int  `json:"focusDuration"`
	BreakDuration           *int  `json:"breakDuration"`
	LongBreakDuration       *int  `json:"longBreakDuration"`
	PomodorosUntilLongBreak *int  `json:"pomodorosUntilLongBreak"`
	AutoStartBreak          *bool `json:"autoStartBreak"`
	AutoStartFocus          *bool `json:"autoStartFocus"`
	SoundEnabled            *bool `json:"soundEnabled"`
	VibrationEnabled        *bool `json:"vibrationEnabled"`
}

// Update handles PUT /api/v1/settings. Absent fields keep their
// current values.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.identity.UpdateSettings(r.Context(), userID, domain.SettingsUpdate{
		FocusDuration:           req.FocusDuration,
		BreakDuration:           req.BreakDuration,
		LongBreakDuration:       req.LongBreakDuration,
		PomodorosUntilLongBreak: req.PomodorosUntilLongBreak,
		AutoStartBreak:          req.AutoStartBreak,
		AutoStartFocus:          req.AutoStartFocus,
		SoundEnabled:            req.SoundEnabled,
		VibrationEnabled:        req.VibrationEnabled,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSettingsDTO(settings))
}

// Reset handles POST /api/v1/settings/reset.
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	settings, err := h.identity.ResetSettings(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toSettingsDTO(settings))
}
