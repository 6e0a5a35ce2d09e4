package games

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"chess_portal/internal/bootstrap"
	domain "chess_portal/internal/domain/analysis"
	gamedomain "chess_portal/internal/domain/game"
	"chess_portal/internal/httpresponse"
	gamesuc "chess_portal/internal/usecase/games"
)

type GameHandler struct {
	cfg    *bootstrap.Config
	log    *zap.SugaredLogger
	gameUC *gamesuc.GameUseCase
}

func NewGameHandler(cfg *bootstrap.Config, log *zap.SugaredLogger, gameUC *gamesuc.GameUseCase) *GameHandler {
	return &GameHandler{
		cfg:    cfg,
		log:    log,
		gameUC: gameUC,
	}
}

// HandleUpload accepts a multipart PGN upload, analyzes it and stores the
// game. Form fields opponent/color/tournament/date/depth override the PGN
// headers.
func (h *GameHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	maxBytes := int64(h.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		h.log.Errorw("multipart parse failed", "error", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload larger than %d MB or malformed", h.cfg.MaxUploadMB))
		return
	}

	file, header, err := r.FormFile("pgn")
	if err != nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "missing pgn file field")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		h.log.Errorw("upload read failed", "error", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	depth, _ := strconv.Atoi(r.FormValue("depth"))
	resp, err := h.gameUC.UploadPGN(r.Context(), gamesuc.UploadInput{
		FileName:   header.Filename,
		PGN:        raw,
		Depth:      depth,
		Opponent:   r.FormValue("opponent"),
		Color:      r.FormValue("color"),
		Tournament: r.FormValue("tournament"),
		Date:       r.FormValue("date"),
	})
	if err != nil {
		h.log.Errorw("upload failed", "file", header.Filename, "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (h *GameHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	pageNum, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || pageNum < 1 {
		pageNum = 1
	}

	list, err := h.gameUC.List(r.Context(), pageNum)
	if err != nil {
		h.log.Errorw("game list failed", "page", pageNum, "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, list)
}

type gameDetail struct {
	Game     gamedomain.Game      `json:"game"`
	Analysis *domain.GameAnalysis `json:"analysis,omitempty"`
}

func (h *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	stored, result, err := h.gameUC.GetByID(r.Context(), gameID)
	if err != nil {
		h.log.Errorw("game fetch failed", "game_id", gameID, "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, gameDetail{Game: stored, Analysis: result})
}

// HandleReport answers with the rendered PDF, not the JSON envelope.
func (h *GameHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	pdfBytes, err := h.gameUC.Report(r.Context(), gameID)
	if err != nil {
		h.log.Errorw("report failed", "game_id", gameID, "error", err)
		httpresponse.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "analysis-"+gameID+".pdf"))
	if _, err := w.Write(pdfBytes); err != nil {
		h.log.Errorw("report write failed", "game_id", gameID, "error", err)
	}
}
