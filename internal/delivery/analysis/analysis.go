package analysis

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	domain "chess_portal/internal/domain/analysis"
	"chess_portal/internal/httpresponse"
	"chess_portal/internal/usecase/games"
	"chess_portal/internal/utils"
)

type AnalysisHandler struct {
	log    *zap.SugaredLogger
	gameUC *games.GameUseCase
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewAnalysisHandler(log *zap.SugaredLogger, gameUC *games.GameUseCase) *AnalysisHandler {
	return &AnalysisHandler{
		log:    log,
		gameUC: gameUC,
	}
}

// HandleAnalyze runs one move list through the engine and answers with the
// full GameAnalysis.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req domain.AnalysisRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Errorw("analyze request decode failed", "error", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.gameUC.Analyze(r.Context(), req)
	if err != nil {
		h.log.Errorw("analysis failed", "moves", len(req.Moves), "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, result)
}

// liveEvent is one websocket frame of the live analysis stream: a move per
// classified ply, then a single summary (or error) frame.
type liveEvent struct {
	Type     string               `json:"type"`
	Move     *domain.MoveRecord   `json:"move,omitempty"`
	Analysis *domain.GameAnalysis `json:"analysis,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// HandleLive upgrades to a websocket, reads one analysis request and
// streams each move record as soon as the engine has scored it. All writes
// happen on this goroutine; the worker only feeds the channel.
func (h *AnalysisHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req domain.AnalysisRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.log.Errorw("live request decode failed", "error", err)
		_ = conn.WriteJSON(liveEvent{Type: "error", Error: "invalid request: " + err.Error()})
		return
	}

	records := make(chan domain.MoveRecord, 16)
	type liveOutcome struct {
		analysis *domain.GameAnalysis
		err      error
	}
	outcome := make(chan liveOutcome, 1)

	go func() {
		result, err := h.gameUC.AnalyzeLive(r.Context(), req, func(rec domain.MoveRecord) {
			records <- rec
		})
		close(records)
		outcome <- liveOutcome{analysis: result, err: err}
	}()

	for rec := range records {
		rec := rec
		if err := conn.WriteJSON(liveEvent{Type: "move", Move: &rec}); err != nil {
			h.log.Errorw("live stream write failed", "error", err)
			// keep draining so the analysis goroutine can finish
			for range records {
			}
			<-outcome
			return
		}
	}

	res := <-outcome
	if res.err != nil {
		h.log.Errorw("live analysis failed", "error", res.err)
		_ = conn.WriteJSON(liveEvent{Type: "error", Error: res.err.Error()})
		return
	}
	_ = conn.WriteJSON(liveEvent{Type: "summary", Analysis: res.analysis})
}
