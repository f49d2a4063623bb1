package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yifanzh/studyclock/internal/insights/application/commands"
	"github.com/yifanzh/studyclock/internal/insights/application/queries"
)

// StatsHandler handles statistics and study record API requests.
type StatsHandler struct {
	summary      *queries.GetSummaryHandler
	breakdown    *queries.GetBreakdownHandler
	daily        *queries.GetDailySeriesHandler
	heatmap      *queries.GetHeatmapHandler
	listRecords  *queries.ListRecordsHandler
	createRecord *commands.CreateRecordHandler
	deleteRecord *commands.DeleteRecordHandler
	userID       uuid.UUID
	logger       *slog.Logger
}

// StatsHandlerConfig holds dependencies for the stats handler.
type StatsHandlerConfig struct {
	Summary      *queries.GetSummaryHandler
	Breakdown    *queries.GetBreakdownHandler
	Daily        *queries.GetDailySeriesHandler
	Heatmap      *queries.GetHeatmapHandler
	ListRecords  *queries.ListRecordsHandler
	CreateRecord *commands.CreateRecordHandler
	DeleteRecord *commands.DeleteRecordHandler
	UserID       uuid.UUID
	Logger       *slog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(cfg StatsHandlerConfig) *StatsHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &StatsHandler{
		summary:      cfg.Summary,
		breakdown:    cfg.Breakdown,
		daily:        cfg.Daily,
		heatmap:      cfg.Heatmap,
		listRecords:  cfg.ListRecords,
		createRecord: cfg.CreateRecord,
		deleteRecord: cfg.DeleteRecord,
		userID:       cfg.UserID,
		logger:       cfg.Logger,
	}
}

// Summary handles GET /api/v1/stats/summary.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	period, err := queries.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	result, err := h.summary.Handle(r.Context(), queries.GetSummaryQuery{UserID: userID, Period: period})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// Breakdown handles GET /api/v1/stats/breakdown.
func (h *StatsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	period, err := queries.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	slices, err := h.breakdown.Handle(r.Context(), queries.GetBreakdownQuery{UserID: userID, Period: period})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, slices)
}

// Daily handles GET /api/v1/stats/daily.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	points, err := h.daily.Handle(r.Context(), queries.GetDailySeriesQuery{
		UserID: userID,
		Days:   parseIntParam(r, "days", 7),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, points)
}

// Heatmap handles GET /api/v1/stats/heatmap.
func (h *StatsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	days, err := h.heatmap.Handle(r.Context(), queries.GetHeatmapQuery{
		UserID: userID,
		Year:   parseIntParam(r, "year", 0),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, days)
}

// ListRecords handles GET /api/v1/records.
func (h *StatsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	records, err := h.listRecords.Handle(r.Context(), queries.ListRecordsQuery{
		UserID:  userID,
		Subject: r.URL.Query().Get("subject"),
		Limit:   parseIntParam(r, "limit", 0),
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, toRecordDTOs(records))
}

type createRecordRequest struct {
	Subject       string  `json:"subject"`
	DurationHours float64 `json:"durationHours"`
	Notes         string  `json:"notes"`
}

// CreateRecord handles POST /api/v1/records.
func (h *StatsHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.createRecord.Handle(r.Context(), commands.CreateRecordCommand{
		UserID:        userID,
		Subject:       req.Subject,
		DurationHours: req.DurationHours,
		Notes:         req.Notes,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, toRecordDTO(record))
}

// DeleteRecord handles DELETE /api/v1/records/{id}.
func (h *StatsHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	userID, err := requestUserID(r, h.userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := h.deleteRecord.Handle(r.Context(), commands.DeleteRecordCommand{UserID: userID, RecordID: id}); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, nil)
}

// Subjects handles GET /api/v1/subjects.
func (h *StatsHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, subjectDTOs())
}
