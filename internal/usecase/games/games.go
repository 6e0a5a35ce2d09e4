package games

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chess_portal/internal/common"
	"chess_portal/internal/domain/analysis"
	"chess_portal/internal/domain/game"
	ownErrors "chess_portal/internal/errors"
	"chess_portal/internal/statuses"
	analysisuc "chess_portal/internal/usecase/analysis"
)

type GameStore interface {
	PutGame(ctx context.Context, gameData game.Game) error
	PutAnalysis(ctx context.Context, stored game.StoredAnalysis) error
	UpdateGameStatus(ctx context.Context, gameID string, status string, summary *analysis.Summary) error
	GetGameByID(ctx context.Context, gameID string) (game.Game, error)
	GetAnalysisByGameID(ctx context.Context, gameID string) (*game.StoredAnalysis, error)
	GetGamesPaginated(ctx context.Context, pageNum int) (*game.ListResponse, error)
	GetCachedAnalysis(ctx context.Context, key string) (*analysis.GameAnalysis, error)
	PutCachedAnalysis(ctx context.Context, key string, value *analysis.GameAnalysis) error
}

type Analyzer interface {
	AnalyzeGame(ctx context.Context, req analysis.AnalysisRequest) (*analysis.GameAnalysis, error)
	AnalyzeGameWithProgress(ctx context.Context, req analysis.AnalysisRequest, progress analysisuc.ProgressFunc) (*analysis.GameAnalysis, error)
}

// MetricsCache is the slice of the stats store the upload flow needs: a
// new analyzed game makes the cached dashboard rollup stale.
type MetricsCache interface {
	InvalidateMetrics(ctx context.Context)
}

type GameUseCase struct {
	acfg     analysisuc.AnalysisConfig
	log      *zap.SugaredLogger
	store    GameStore
	analyzer Analyzer
	metrics  MetricsCache
}

func NewGameUseCase(acfg analysisuc.AnalysisConfig, log *zap.SugaredLogger, store GameStore, analyzer Analyzer, metrics MetricsCache) *GameUseCase {
	return &GameUseCase{
		acfg:     acfg,
		log:      log,
		store:    store,
		analyzer: analyzer,
		metrics:  metrics,
	}
}

// Analyze runs a move list through the engine, serving repeated requests
// from the Redis cache. Caching is sound only because the analyzer is
// deterministic: same moves, same depth, same bytes.
func (u *GameUseCase) Analyze(ctx context.Context, req analysis.AnalysisRequest) (*analysis.GameAnalysis, error) {
	if len(req.Moves) == 0 {
		return nil, ownErrors.ErrEmptyMoveList
	}

	depth := u.acfg.NormalizeDepth(req.Depth)
	key := common.AnalysisCacheKey(req.Moves, depth)

	if cached, err := u.store.GetCachedAnalysis(ctx, key); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		u.log.Errorw("analysis cache read failed", "key", key, "error", err)
	}

	result, err := u.analyzer.AnalyzeGame(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := u.store.PutCachedAnalysis(ctx, key, result); err != nil {
		u.log.Errorw("analysis cache write failed", "key", key, "error", err)
	}
	return result, nil
}

// AnalyzeLive always takes the engine path so every ply can be streamed as
// it is classified; the finished result still lands in the cache.
func (u *GameUseCase) AnalyzeLive(ctx context.Context, req analysis.AnalysisRequest, progress analysisuc.ProgressFunc) (*analysis.GameAnalysis, error) {
	result, err := u.analyzer.AnalyzeGameWithProgress(ctx, req, progress)
	if err != nil {
		return nil, err
	}

	key := common.AnalysisCacheKey(req.Moves, u.acfg.NormalizeDepth(req.Depth))
	if err := u.store.PutCachedAnalysis(ctx, key, result); err != nil {
		u.log.Errorw("analysis cache write failed", "key", key, "error", err)
	}
	return result, nil
}

// UploadInput is one uploaded game: the raw PGN plus the metadata the
// upload form may override. Empty form fields fall back to the PGN tags.
type UploadInput struct {
	FileName   string
	PGN        []byte
	Depth      int
	Opponent   string
	Color      string
	Tournament string
	Date       string
}

// UploadPGN parses, analyzes and persists one game. The stored game keeps
// its PGN and move list, so it can always be re-analyzed at another depth.
func (u *GameUseCase) UploadPGN(ctx context.Context, in UploadInput) (*game.UploadResponse, error) {
	if !strings.EqualFold(filepath.Ext(in.FileName), ".pgn") {
		return nil, fmt.Errorf("%w: %s", ownErrors.ErrNotPGN, in.FileName)
	}

	parsed, err := ParsePGN(string(in.PGN))
	if err != nil {
		return nil, err
	}

	depth := u.acfg.NormalizeDepth(in.Depth)
	stored := game.Game{
		ID:          uuid.NewString(),
		Date:        firstNonEmpty(in.Date, parsed.Tag("Date")),
		Tournament:  firstNonEmpty(in.Tournament, parsed.Tag("Event")),
		Opponent:    firstNonEmpty(in.Opponent, parsed.OpponentFor(in.Color)),
		Color:       ownColor(in.Color),
		Result:      parsed.Result,
		ECO:         parsed.Tag("ECO"),
		TimeControl: parsed.Tag("TimeControl"),
		PGN:         string(in.PGN),
		Moves:       parsed.Moves,
		Depth:       depth,
		Status:      statuses.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := u.store.PutGame(ctx, stored); err != nil {
		return nil, err
	}

	result, err := u.Analyze(ctx, analysis.AnalysisRequest{Moves: parsed.Moves, Depth: depth})
	if err != nil {
		if statusErr := u.store.UpdateGameStatus(ctx, stored.ID, statuses.StatusFailed, nil); statusErr != nil {
			u.log.Errorw("failed to mark game as failed", "game_id", stored.ID, "error", statusErr)
		}
		return nil, err
	}

	if err := u.store.PutAnalysis(ctx, game.StoredAnalysis{
		GameID:    stored.ID,
		Analysis:  *result,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	if err := u.store.UpdateGameStatus(ctx, stored.ID, statuses.StatusAnalyzed, &result.Summary); err != nil {
		return nil, err
	}

	stored.Status = statuses.StatusAnalyzed
	stored.Summary = &result.Summary
	u.metrics.InvalidateMetrics(ctx)

	u.log.Infow("game uploaded and analyzed",
		"game_id", stored.ID, "moves", len(parsed.Moves), "depth", depth,
		"accuracy", result.Summary.Accuracy)

	return &game.UploadResponse{Game: stored, Analysis: result}, nil
}

func (u *GameUseCase) List(ctx context.Context, pageNum int) (*game.ListResponse, error) {
	return u.store.GetGamesPaginated(ctx, pageNum)
}

// GetByID returns the stored game and, when the game has been analyzed,
// its full analysis. A game that is still pending comes back with a nil
// analysis, not an error.
func (u *GameUseCase) GetByID(ctx context.Context, gameID string) (game.Game, *analysis.GameAnalysis, error) {
	stored, err := u.store.GetGameByID(ctx, gameID)
	if err != nil {
		return game.Game{}, nil, err
	}

	storedAnalysis, err := u.store.GetAnalysisByGameID(ctx, gameID)
	if errors.Is(err, ownErrors.ErrAnalysisNotFound) {
		return stored, nil, nil
	}
	if err != nil {
		return game.Game{}, nil, err
	}
	return stored, &storedAnalysis.Analysis, nil
}

// Report renders the PDF analysis report for one stored game.
func (u *GameUseCase) Report(ctx context.Context, gameID string) ([]byte, error) {
	stored, result, err := u.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ownErrors.ErrAnalysisNotFound
	}
	return BuildReport(stored, *result)
}

func ownColor(color string) string {
	if strings.EqualFold(color, analysis.ColorBlack) {
		return analysis.ColorBlack
	}
	return analysis.ColorWhite
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
