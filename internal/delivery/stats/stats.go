package stats

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	domain "chess_portal/internal/domain/stats"
	"chess_portal/internal/httpresponse"
	statsuc "chess_portal/internal/usecase/stats"
	"chess_portal/internal/utils"
)

type StatsHandler struct {
	log     *zap.SugaredLogger
	statsUC *statsuc.StatsUseCase
}

func NewStatsHandler(log *zap.SugaredLogger, statsUC *statsuc.StatsUseCase) *StatsHandler {
	return &StatsHandler{
		log:     log,
		statsUC: statsUC,
	}
}

func (h *StatsHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.statsUC.Metrics(r.Context())
	if err != nil {
		h.log.Errorw("metrics failed", "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, metrics)
}

func (h *StatsHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	weeks, err := strconv.Atoi(r.URL.Query().Get("weeks"))
	if err != nil || weeks < 1 {
		weeks = 12
	}

	progress, err := h.statsUC.Progress(r.Context(), weeks)
	if err != nil {
		h.log.Errorw("progress failed", "weeks", weeks, "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, progress)
}

func (h *StatsHandler) HandleSaveProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req domain.ProgressNoteRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Errorw("progress note decode failed", "error", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.statsUC.SaveNote(r.Context(), req); err != nil {
		h.log.Errorw("progress note save failed", "week", req.WeekStart, "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, req)
}
